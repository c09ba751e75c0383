// Package storetest is a conformance suite every store backend must pass.
package storetest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"crewmates/internal/model"
	"crewmates/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store; the suite closes it.
type Factory func(t *testing.T) store.Store

// base has microsecond precision so that Postgres round trips compare equal.
var base = time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Helper()

	cases := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"RoundTrip", testRoundTrip},
		{"NewestFirst", testNewestFirst},
		{"StampsMissingCreatedAt", testStampsMissingCreatedAt},
		{"UpdateKeepsFieldsAndAdvancesCreatedAt", testUpdateIdempotent},
		{"UpdateChangesFields", testUpdateChangesFields},
		{"UpdateMissing", testUpdateMissing},
		{"DeleteCompleteness", testDeleteCompleteness},
		{"DeleteMissing", testDeleteMissing},
		{"RejectsInvalidFields", testRejectsInvalid},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tc.fn(t, s)
		})
	}
}

func fields(name string, speed float64, color model.Color, at time.Time) model.Fields {
	return model.Fields{Name: name, Speed: speed, Color: color, CreatedAt: at}
}

func testRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, fields("Old", 1, model.ColorRed, base.Add(-time.Hour)))
	require.NoError(t, err)

	rec, err := s.Insert(ctx, fields("Ada", 12, model.ColorBlue, base))
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	got, err := s.Select(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, 12.0, got[0].Speed)
	assert.Equal(t, model.ColorBlue, got[0].Color)
	assert.True(t, got[0].CreatedAt.Equal(base), "created_at %v != %v", got[0].CreatedAt, base)

	n := 0
	for _, r := range got {
		if r.ID == rec.ID {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func testNewestFirst(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i, name := range []string{"a", "b", "c"} {
		_, err := s.Insert(ctx, fields(name, float64(i), model.ColorGreen, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	got, err := s.Select(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func testStampsMissingCreatedAt(t *testing.T, s store.Store) {
	before := time.Now().Add(-time.Minute)
	rec, err := s.Insert(context.Background(), fields("Zed", 3, model.ColorPink, time.Time{}))
	require.NoError(t, err)
	assert.True(t, rec.CreatedAt.After(before), "expected created_at to be stamped, got %v", rec.CreatedAt)
}

func testUpdateIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec, err := s.Insert(ctx, fields("Ada", 12, model.ColorBlue, base))
	require.NoError(t, err)

	later := base.Add(time.Second)
	upd, err := s.Update(ctx, rec.ID, fields(rec.Name, rec.Speed, rec.Color, later))
	require.NoError(t, err)
	assert.Equal(t, rec.ID, upd.ID)

	got, err := s.Select(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.Name, got[0].Name)
	assert.Equal(t, rec.Speed, got[0].Speed)
	assert.Equal(t, rec.Color, got[0].Color)
	assert.True(t, got[0].CreatedAt.After(rec.CreatedAt), "created_at did not advance: %v", got[0].CreatedAt)
}

func testUpdateChangesFields(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec, err := s.Insert(ctx, fields("Ada", 12, model.ColorBlue, base))
	require.NoError(t, err)
	_, err = s.Update(ctx, rec.ID, fields("Grace", 7.5, model.ColorRainbow, base.Add(time.Minute)))
	require.NoError(t, err)

	got, err := s.Select(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Grace", got[0].Name)
	assert.Equal(t, 7.5, got[0].Speed)
	assert.Equal(t, model.ColorRainbow, got[0].Color)
}

func testUpdateMissing(t *testing.T, s store.Store) {
	_, err := s.Update(context.Background(), "424242", fields("Ada", 1, model.ColorRed, base))
	assert.True(t, errors.Is(err, store.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func testDeleteCompleteness(t *testing.T, s store.Store) {
	ctx := context.Background()
	keep, err := s.Insert(ctx, fields("Keep", 1, model.ColorRed, base))
	require.NoError(t, err)
	gone, err := s.Insert(ctx, fields("Gone", 2, model.ColorOrange, base.Add(time.Second)))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, gone.ID))

	got, err := s.Select(ctx)
	require.NoError(t, err)
	for _, r := range got {
		assert.NotEqual(t, gone.ID, r.ID)
	}
	require.Len(t, got, 1)
	assert.Equal(t, keep.ID, got[0].ID)
}

func testDeleteMissing(t *testing.T, s store.Store) {
	err := s.Delete(context.Background(), "424242")
	assert.True(t, errors.Is(err, store.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func testRejectsInvalid(t *testing.T, s store.Store) {
	_, err := s.Insert(context.Background(), fields("Ada", 1, "", base))
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "color", ve.Field)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = s.Insert(context.Background(), fields("Ada", v, model.ColorRed, base))
		require.ErrorAs(t, err, &ve, "speed %v", v)
		assert.Equal(t, "speed", ve.Field)
	}

	got, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
