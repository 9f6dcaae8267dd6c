package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/queryset-api/internal/config"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/storage/memory"
	"github.com/aanand-mishra/queryset-api/internal/types"
)

// brokenStore fails course reads, which makes the startup seed fail.
type brokenStore struct {
	storage.Storage
}

func (brokenStore) GetCourses() ([]types.Course, error) {
	return nil, errors.New("disk I/O error")
}

// trackClose replaces openStore for the test and reports whether the
// store was closed.
func trackClose(t *testing.T, store storage.Storage) *bool {
	t.Helper()
	closed := new(bool)
	orig := openStore
	openStore = func(*config.Config) (storage.Storage, func() error, error) {
		return store, func() error { *closed = true; return nil }, nil
	}
	t.Cleanup(func() { openStore = orig })
	return closed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunClosesStore(t *testing.T) {
	tests := []struct {
		name    string
		store   storage.Storage
		cfg     config.Config
		cancel  bool
		wantErr string
	}{
		{
			name:    "seed fails",
			store:   brokenStore{memory.New()},
			cfg:     config.Config{SeedOnStart: true, HTTPServer: config.HTTPServer{Addr: "127.0.0.1:0"}},
			wantErr: "failed to seed storage",
		},
		{
			name:    "listen fails",
			store:   memory.New(),
			cfg:     config.Config{HTTPServer: config.HTTPServer{Addr: "127.0.0.1:-1"}},
			wantErr: "server encountered an error",
		},
		{
			name:   "graceful shutdown",
			store:  memory.New(),
			cfg:    config.Config{SeedOnStart: true, HTTPServer: config.HTTPServer{Addr: "127.0.0.1:0"}},
			cancel: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closed := trackClose(t, tt.store)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				time.AfterFunc(50*time.Millisecond, cancel)
			}

			err := run(ctx, &tt.cfg, discardLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, *closed, "store must be closed")
		})
	}
}

func TestRunOpenError(t *testing.T) {
	orig := openStore
	openStore = func(*config.Config) (storage.Storage, func() error, error) {
		return nil, nil, errors.New("unable to open database file")
	}
	t.Cleanup(func() { openStore = orig })

	err := run(context.Background(), &config.Config{}, discardLogger())
	assert.ErrorContains(t, err, "failed to initialise storage")
}

func TestSeedIfEmpty(t *testing.T) {
	store := memory.New()
	require.NoError(t, seedIfEmpty(store))
	require.NoError(t, seedIfEmpty(store))

	courses, err := store.GetCourses()
	require.NoError(t, err)
	assert.Len(t, courses, 3)
	students, err := store.GetStudents()
	require.NoError(t, err)
	assert.Len(t, students, 8)
}
