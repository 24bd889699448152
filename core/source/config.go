package source

// Config describes one side of a reconciliation (source or target dataset).
type Config struct {
	// Kind selects the backend (mysql, sqlite, postgres, snowflake, object).
	Kind string `mapstructure:"kind" default:"mysql"`
	// DSN is the connection string for database kinds.
	DSN string `mapstructure:"dsn" default:""`
	// Table is the table holding the dataset for database kinds.
	Table string `mapstructure:"table" default:""`
	// Object is the NDJSON object name for the object kind.
	Object string `mapstructure:"object" default:""`
	// TimeoutSeconds is the connection timeout for database kinds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
