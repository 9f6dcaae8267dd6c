// Package driver opens the record store named by the configuration.
package driver

import (
	"fmt"

	"github.com/aanand-mishra/queryset-api/internal/config"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/storage/memory"
	"github.com/aanand-mishra/queryset-api/internal/storage/sqlite"
)

// Open returns the configured store and a function that releases it.
func Open(cfg *config.Config) (storage.Storage, func() error, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.New(), func() error { return nil }, nil
	case config.DriverSQLite, "":
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
