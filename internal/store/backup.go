package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"crewmates/internal/model"
)

// Backup writes every record as JSON lines, oldest first, so a restore
// replays them in creation order.
func Backup(ctx context.Context, s Store, w io.Writer) (int, error) {
	recs, err := s.Select(ctx)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i := len(recs) - 1; i >= 0; i-- {
		if err := enc.Encode(recs[i]); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Restore inserts the records of a Backup stream. Ids are assigned by the
// target store; created_at is kept. With replace set, existing records are
// deleted first.
//
// The whole stream is parsed before anything is written.
func Restore(ctx context.Context, s Store, r io.Reader, replace bool) (int, error) {
	var fields []model.Fields
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec model.Crewmate
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return 0, fmt.Errorf("backup: line %d: %w", line, err)
		}
		f := rec.Fields()
		if err := f.Validate(); err != nil {
			return 0, fmt.Errorf("backup: line %d: %w", line, err)
		}
		fields = append(fields, f)
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}

	if replace {
		existing, err := s.Select(ctx)
		if err != nil {
			return 0, err
		}
		for _, rec := range existing {
			if err := s.Delete(ctx, rec.ID); err != nil {
				return 0, fmt.Errorf("clear %s: %w", rec.ID, err)
			}
		}
	}

	for i, f := range fields {
		if _, err := s.Insert(ctx, f); err != nil {
			return i, err
		}
	}
	return len(fields), nil
}
