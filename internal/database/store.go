// internal/database/store.go
package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/inventory-backend/internal/config"
	"github.com/javajoker/inventory-backend/internal/repository"
)

// ResettableStore is a store that can also wipe all of its data.
type ResettableStore interface {
	repository.Store
	Reset(ctx context.Context) error
}

// OpenStore builds the store selected by cfg.Storage.Driver. The returned
// close func releases any connection it opened.
func OpenStore(cfg *config.Config) (ResettableStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logrus.Warn("Using in-memory storage; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil

	case config.StorageDriverPostgres:
		db, err := Initialize(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := RunMigrations(db); err != nil {
			Close(db)
			return nil, nil, err
		}
		return repository.NewGormStore(db, cfg.Database.Timeout()), func() { Close(db) }, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
