// Package store holds the remote crewmate store clients. Every backend speaks
// the same four-verb contract; callers never see which one they talk to.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"crewmates/internal/model"
)

// Store is the remote tabular store holding crewmate records.
//
// Select returns every record, newest created_at first. Insert and Update
// persist f as given; a zero f.CreatedAt is stamped with the current time.
type Store interface {
	Select(ctx context.Context) ([]model.Crewmate, error)
	Insert(ctx context.Context, f model.Fields) (model.Crewmate, error)
	Update(ctx context.Context, id string, f model.Fields) (model.Crewmate, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ErrNotFound is wrapped by Update and Delete when no record has the id.
var ErrNotFound = errors.New("crewmate not found")

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// prepare validates f and fills in CreatedAt.
func prepare(f model.Fields, now func() time.Time) (model.Fields, error) {
	f.Name = strings.TrimSpace(f.Name)
	if err := f.Validate(); err != nil {
		return model.Fields{}, err
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now()
	}
	f.CreatedAt = f.CreatedAt.UTC()
	return f, nil
}

// sortNewestFirst orders by created_at descending, breaking ties with newer.
func sortNewestFirst(xs []model.Crewmate, newer func(a, b int) bool) {
	sort.SliceStable(xs, func(i, j int) bool {
		if !xs[i].CreatedAt.Equal(xs[j].CreatedAt) {
			return xs[i].CreatedAt.After(xs[j].CreatedAt)
		}
		return newer(i, j)
	})
}
