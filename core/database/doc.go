// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL and SQLite connections based on the application's configuration.
//
// # Connect
//
// The generic Connect function establishes a connection to the database. It applies
// connection pool tuning and verifies the connection with a bounded ping before
// returning, so callers can treat a returned *gorm.DB as usable.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The dataset sources use
// GetTableColumns and ProjectColumns to push the excluded-field projection down into
// the paged SELECT instead of stripping fields after the fact.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "accounts")
package database
