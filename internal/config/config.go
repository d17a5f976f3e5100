package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database       DatabaseConfig
	MaxConcurrency int
	DefaultRowCap  int
	SampleSize     int
	MaxPatterns    int
	TopValues      int
	TopDates       int
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
}

// Load builds the configuration from defaults and DPROF_-prefixed
// environment variables. Command flags override the result in cmd/root.go.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("dprof")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("max_concurrency", 4)
	v.SetDefault("default_row_cap", 10000)
	v.SetDefault("sample_size", 1000)
	v.SetDefault("max_patterns", 20)
	v.SetDefault("top_values", 10)
	v.SetDefault("top_dates", 5)
	v.SetDefault("db.dialect", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")

	return &Config{
		Database: DatabaseConfig{
			Dialect:                        v.GetString("db.dialect"),
			Host:                           v.GetString("db.host"),
			Port:                           v.GetInt("db.port"),
			User:                           v.GetString("db.user"),
			Password:                       v.GetString("db.password"),
			DBName:                         v.GetString("db.name"),
			SSLMode:                        v.GetString("db.sslmode"),
			CloudSQLInstanceConnectionName: v.GetString("db.cloudsql_instance"),
			UsePrivateIP:                   v.GetBool("db.use_private_ip"),
		},
		MaxConcurrency: v.GetInt("max_concurrency"),
		DefaultRowCap:  v.GetInt("default_row_cap"),
		SampleSize:     v.GetInt("sample_size"),
		MaxPatterns:    v.GetInt("max_patterns"),
		TopValues:      v.GetInt("top_values"),
		TopDates:       v.GetInt("top_dates"),
	}
}

// Validate rejects settings the profiling engine cannot run with.
func (c *Config) Validate() error {
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max concurrency must be positive, got %d", c.MaxConcurrency)
	}
	if c.DefaultRowCap < 0 {
		return fmt.Errorf("default row cap must not be negative, got %d", c.DefaultRowCap)
	}
	return nil
}
