package source

import (
	"fmt"

	"datarecon/core/database"
	"datarecon/core/storage"

	"github.com/jmoiron/sqlx"

	// SQL drivers for the sqlx-backed kinds.
	_ "github.com/lib/pq"
	_ "github.com/snowflakedb/gosnowflake"
)

// Deps carries the shared collaborators dataset sources may need.
type Deps struct {
	// Storage serves NDJSON dataset objects for the object kind.
	Storage storage.Client
	// Bucket is the bucket holding dataset objects.
	Bucket string
}

// New creates the dataset source for the configured kind. name labels the
// side ("source" or "target") in logs and errors; idField is the record
// identifier field shared by both sides of a run.
func New(name string, cfg Config, idField string, deps Deps) (Source, error) {
	switch cfg.Kind {
	case "mysql", "sqlite":
		db, err := database.Connect(database.Config{
			Driver:         cfg.Kind,
			DSN:            cfg.DSN,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect %s dataset: %w", name, err)
		}
		return NewGorm(name, db, cfg.Table, idField), nil

	case "postgres", "snowflake":
		db, err := sqlx.Connect(cfg.Kind, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect %s dataset: %w", name, err)
		}
		return NewSQL(name, db, cfg.Table, idField), nil

	case "object":
		if deps.Storage == nil {
			return nil, fmt.Errorf("%s dataset kind object requires a storage client", name)
		}
		return NewObject(name, deps.Storage, deps.Bucket, cfg.Object, idField), nil

	default:
		return nil, fmt.Errorf("unknown %s dataset kind %q", name, cfg.Kind)
	}
}
