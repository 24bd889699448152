package staging

import (
	"fmt"

	"datarecon/core/database"
)

// Config holds configuration for the staging store backend.
type Config struct {
	// Backend selects the store implementation (memory, sqlite).
	Backend string `mapstructure:"backend" default:"memory"`
	// Path is the SQLite database file for the sqlite backend.
	Path string `mapstructure:"path" default:"./staging.db"`
}

// New creates a staging store for the configured backend.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		db, err := database.Connect(database.Config{Driver: "sqlite", DSN: cfg.Path})
		if err != nil {
			return nil, fmt.Errorf("failed to open staging database: %w", err)
		}
		return NewGorm(db)
	default:
		return nil, fmt.Errorf("unknown staging backend %q", cfg.Backend)
	}
}
