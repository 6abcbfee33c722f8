package storage

import (
	"context"
	"fmt"
	"strings"
)

const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"

	defaultSQLitePath = "mockwise.db"
)

type Config struct {
	Driver     string
	SQLitePath string
	Firestore  FirestoreConfig
}

// Open returns the backend named by cfg.Driver. SQLite is the default.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		path := strings.TrimSpace(cfg.SQLitePath)
		if path == "" {
			path = defaultSQLitePath
		}
		return NewSQLite(ctx, path)
	case DriverFirestore:
		return NewFirestore(ctx, cfg.Firestore)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
