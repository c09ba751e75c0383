package store

import (
	"context"
	"sync"
	"time"

	"crewmates/internal/model"

	"github.com/google/uuid"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. It backs the "memory" backend and tests.
type Memory struct {
	mu   sync.Mutex
	rows map[string]memRow
	seq  int64
	now  func() time.Time
	ids  func() string
}

type memRow struct {
	rec model.Crewmate
	seq int64
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the clock used to stamp records without CreatedAt.
func WithClock(fn func() time.Time) MemoryOption {
	return func(m *Memory) {
		if fn != nil {
			m.now = fn
		}
	}
}

// WithIDs overrides id generation (uuid by default).
func WithIDs(fn func() string) MemoryOption {
	return func(m *Memory) {
		if fn != nil {
			m.ids = fn
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		rows: map[string]memRow{},
		now:  func() time.Time { return time.Now().UTC() },
		ids:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Select(ctx context.Context) ([]model.Crewmate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Crewmate, 0, len(m.rows))
	seqs := make(map[string]int64, len(m.rows))
	for id, r := range m.rows {
		out = append(out, r.rec)
		seqs[id] = r.seq
	}
	sortNewestFirst(out, func(a, b int) bool { return seqs[out[a].ID] > seqs[out[b].ID] })
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, f model.Fields) (model.Crewmate, error) {
	if err := ctx.Err(); err != nil {
		return model.Crewmate{}, err
	}
	f, err := prepare(f, m.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	rec := model.Crewmate{ID: m.ids(), Name: f.Name, Speed: f.Speed, Color: f.Color, CreatedAt: f.CreatedAt}
	m.rows[rec.ID] = memRow{rec: rec, seq: m.seq}
	return rec, nil
}

func (m *Memory) Update(ctx context.Context, id string, f model.Fields) (model.Crewmate, error) {
	if err := ctx.Err(); err != nil {
		return model.Crewmate{}, err
	}
	f, err := prepare(f, m.now)
	if err != nil {
		return model.Crewmate{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rows[id]
	if !ok {
		return model.Crewmate{}, notFound(id)
	}
	r.rec = model.Crewmate{ID: id, Name: f.Name, Speed: f.Speed, Color: f.Color, CreatedAt: f.CreatedAt}
	m.rows[id] = r
	return r.rec, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return notFound(id)
	}
	delete(m.rows, id)
	return nil
}

func (m *Memory) Close() error { return nil }
