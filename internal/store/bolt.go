package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crewmates/internal/model"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var _ Store = (*Bolt)(nil)

// Bolt keeps one bucket per table: key = id, value = boltRow JSON.
type Bolt struct {
	db     *bbolt.DB
	bucket []byte
	now    func() time.Time
}

type boltRow struct {
	Seq    uint64         `json:"seq"`
	Record model.Crewmate `json:"record"`
}

func OpenBolt(path, table string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	bucket := []byte(table)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db, bucket: bucket, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (b *Bolt) Select(ctx context.Context) ([]model.Crewmate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []boltRow
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(_, v []byte) error {
			var r boltRow
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			rows = append(rows, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Crewmate, len(rows))
	seqs := make(map[string]uint64, len(rows))
	for i, r := range rows {
		out[i] = r.Record
		seqs[r.Record.ID] = r.Seq
	}
	sortNewestFirst(out, func(i, j int) bool { return seqs[out[i].ID] > seqs[out[j].ID] })
	return out, nil
}

func (b *Bolt) Insert(ctx context.Context, f model.Fields) (model.Crewmate, error) {
	if err := ctx.Err(); err != nil {
		return model.Crewmate{}, err
	}
	f, err := prepare(f, b.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	rec := model.Crewmate{ID: uuid.NewString(), Name: f.Name, Speed: f.Speed, Color: f.Color, CreatedAt: f.CreatedAt}
	err = b.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		seq, err := bk.NextSequence()
		if err != nil {
			return err
		}
		return putBoltRow(bk, boltRow{Seq: seq, Record: rec})
	})
	if err != nil {
		return model.Crewmate{}, err
	}
	return rec, nil
}

func (b *Bolt) Update(ctx context.Context, id string, f model.Fields) (model.Crewmate, error) {
	if err := ctx.Err(); err != nil {
		return model.Crewmate{}, err
	}
	f, err := prepare(f, b.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	rec := model.Crewmate{ID: id, Name: f.Name, Speed: f.Speed, Color: f.Color, CreatedAt: f.CreatedAt}
	err = b.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		v := bk.Get([]byte(id))
		if v == nil {
			return notFound(id)
		}
		var r boltRow
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}
		r.Record = rec
		return putBoltRow(bk, r)
	})
	if err != nil {
		return model.Crewmate{}, err
	}
	return rec, nil
}

func (b *Bolt) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		if bk.Get([]byte(id)) == nil {
			return notFound(id)
		}
		return bk.Delete([]byte(id))
	})
}

func (b *Bolt) Close() error { return b.db.Close() }

func putBoltRow(bk *bbolt.Bucket, r boltRow) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return bk.Put([]byte(r.Record.ID), data)
}
