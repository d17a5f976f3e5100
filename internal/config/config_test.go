package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, 10000, cfg.DefaultRowCap)
	assert.Equal(t, 1000, cfg.SampleSize)
	assert.Equal(t, 20, cfg.MaxPatterns)
	assert.Equal(t, 10, cfg.TopValues)
	assert.Equal(t, 5, cfg.TopDates)
	assert.Equal(t, "postgres", cfg.Database.Dialect)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DPROF_MAX_CONCURRENCY", "9")
	t.Setenv("DPROF_DEFAULT_ROW_CAP", "500")
	t.Setenv("DPROF_DB_DIALECT", "mysql")
	t.Setenv("DPROF_DB_HOST", "db.internal")
	t.Setenv("DPROF_DB_PORT", "3306")

	cfg := Load()

	assert.Equal(t, 9, cfg.MaxConcurrency)
	assert.Equal(t, 500, cfg.DefaultRowCap)
	assert.Equal(t, "mysql", cfg.Database.Dialect)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, true},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, true},
		{"negative row cap", func(c *Config) { c.DefaultRowCap = -1 }, true},
		{"zero row cap means uncapped", func(c *Config) { c.DefaultRowCap = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
