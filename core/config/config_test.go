package config_test

import (
	"testing"

	"datarecon/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "memory", cfg.Staging.Backend)
	assert.Equal(t, 50000, cfg.Recon.PageSize)
	assert.Equal(t, 10, cfg.Recon.SampleCap)
	assert.Equal(t, "id", cfg.Recon.IDField)
	assert.Empty(t, cfg.Recon.ExcludeFields())
	assert.Equal(t, "mysql", cfg.Source.Kind)
	assert.Equal(t, "datasets", cfg.Storage.Bucket)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RECON_PAGE_SIZE", "250")
	t.Setenv("RECON_EXCLUDE", "updated_at, etag")
	t.Setenv("SOURCE_KIND", "object")
	t.Setenv("TARGET_DSN", "file:target.db")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 250, cfg.Recon.PageSize)
	assert.Equal(t, []string{"updated_at", "etag"}, cfg.Recon.ExcludeFields())
	assert.Equal(t, "object", cfg.Source.Kind)
	assert.Equal(t, "file:target.db", cfg.Target.DSN)
}
