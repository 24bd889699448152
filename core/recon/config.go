package recon

import "strings"

// Config holds reconciliation tuning loaded from the environment.
type Config struct {
	// PageSize is the number of records fetched per batch.
	PageSize int `mapstructure:"page_size" default:"50000"`
	// SampleCap bounds how many differing records a report retains.
	SampleCap int `mapstructure:"sample_cap" default:"10"`
	// Workers is the hashing goroutine count per batch. 0 picks from NumCPU.
	Workers int `mapstructure:"workers" default:"0"`
	// IDField names the record field holding the primary identifier.
	IDField string `mapstructure:"id_field" default:"id"`
	// Exclude is a comma-separated list of top-level fields ignored when hashing.
	Exclude string `mapstructure:"exclude" default:""`
	// ArchiveReports uploads finished reports to object storage when true.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`
}

// Options converts the configuration into engine options.
func (c Config) Options() Options {
	var exclude map[string]struct{}
	if fields := c.ExcludeFields(); len(fields) > 0 {
		exclude = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			exclude[f] = struct{}{}
		}
	}
	return Options{
		PageSize:  c.PageSize,
		SampleCap: c.SampleCap,
		Workers:   c.Workers,
		IDField:   c.IDField,
		Exclude:   exclude,
	}
}

// ExcludeFields splits the Exclude list into trimmed field names.
func (c Config) ExcludeFields() []string {
	if strings.TrimSpace(c.Exclude) == "" {
		return nil
	}
	parts := strings.Split(c.Exclude, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}
