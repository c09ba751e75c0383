package store

import (
	"context"
	"fmt"
	"log/slog"

	"crewmates/internal/config"
)

// Open builds the backend selected by cfg. metrics may be nil.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger, metrics *Metrics) (Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	backend := cfg.ResolvedBackend()

	var (
		s   Store
		err error
	)
	switch backend {
	case config.BackendSupabase:
		s, err = OpenREST(RESTOptions{URL: cfg.URL, Key: cfg.Key, Table: cfg.Table, Logger: log})
	case config.BackendPostgres:
		s, err = OpenPostgres(ctx, cfg.DSN, cfg.Table)
	case config.BackendSQLite, config.BackendBolt:
		path, perr := cfg.DataPath()
		if perr != nil {
			return nil, perr
		}
		if backend == config.BackendSQLite {
			s, err = OpenSQLite(ctx, path, cfg.Table)
		} else {
			s, err = OpenBolt(path, cfg.Table)
		}
	case config.BackendMemory:
		s = NewMemory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	log.Info("store opened", "backend", backend, "table", cfg.Table)
	return Instrument(s, metrics, backend), nil
}
