package store

import (
	"context"
	"errors"
	"time"

	"crewmates/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by every instrumented store.
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the store collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewmates",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by backend, verb and result.",
		}, []string{"backend", "op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crewmates",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
	if err := reg.Register(m.ops); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.ops = already.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.duration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.duration = already.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m, nil
}

// Instrument wraps s so that every call is counted and timed.
func Instrument(s Store, m *Metrics, backend string) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, m: m, backend: backend}
}

type instrumented struct {
	Store
	m       *Metrics
	backend string
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			result = "invalid"
		} else {
			result = "error"
		}
	}
	i.m.ops.WithLabelValues(i.backend, op, result).Inc()
	i.m.duration.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Select(ctx context.Context) (out []model.Crewmate, err error) {
	defer func(start time.Time) { i.observe("select", start, err) }(time.Now())
	return i.Store.Select(ctx)
}

func (i *instrumented) Insert(ctx context.Context, f model.Fields) (out model.Crewmate, err error) {
	defer func(start time.Time) { i.observe("insert", start, err) }(time.Now())
	return i.Store.Insert(ctx, f)
}

func (i *instrumented) Update(ctx context.Context, id string, f model.Fields) (out model.Crewmate, err error) {
	defer func(start time.Time) { i.observe("update", start, err) }(time.Now())
	return i.Store.Update(ctx, id, f)
}

func (i *instrumented) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { i.observe("delete", start, err) }(time.Now())
	return i.Store.Delete(ctx, id)
}
