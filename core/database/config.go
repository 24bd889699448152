package database

// Config holds configuration for a relational database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql"`
	// DSN is the driver-specific data source name.
	// For mysql: user:pass@tcp(host:port)/dbname. For sqlite: a file path or :memory:.
	DSN string `mapstructure:"dsn" default:""`
	// TimeoutSeconds is the connection and I/O timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
