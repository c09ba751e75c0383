package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"crewmates/internal/store"
	"crewmates/internal/store/storetest"

	"github.com/stretchr/testify/require"
)

func TestMemoryConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemory()
	})
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "crew.sqlite"), "crewmates")
		require.NoError(t, err)
		return s
	})
}

func TestBoltConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.OpenBolt(filepath.Join(t.TempDir(), "nested", "crew.bolt"), "crewmates")
		require.NoError(t, err)
		return s
	})
}

func TestPostgresConformance(t *testing.T) {
	dsn := os.Getenv("CREWMATES_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CREWMATES_TEST_POSTGRES_DSN not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.OpenPostgres(context.Background(), dsn, "crewmates_test")
		require.NoError(t, err)
		_, err = s.DB().ExecContext(context.Background(), `TRUNCATE crewmates_test`)
		require.NoError(t, err)
		return s
	})
}

func TestRESTConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		srv := newFakePostgREST(t, store.NewMemory())
		return srv.client(t)
	})
}
