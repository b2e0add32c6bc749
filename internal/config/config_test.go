package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Host: "0.0.0.0", Env: "development"},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/financing?sslmode=disable",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Store: StoreConfig{
			Backend:   StoreBackendPostgres,
			Namespace: "financing-tracker",
		},
		Scheduler: SchedulerConfig{
			RefreshSpec: "0 0 0 * * *",
			Timezone:    "America/Sao_Paulo",
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "dynamo" }},
		{"postgres without url", func(c *Config) { c.Database.URL = "" }},
		{"redis without addr", func(c *Config) {
			c.Store.Backend = StoreBackendRedis
			c.Redis.Addr = ""
		}},
		{"missing namespace", func(c *Config) { c.Store.Namespace = "" }},
		{"bad timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }},
		{"ledger without database", func(c *Config) {
			c.Store.Backend = StoreBackendRedis
			c.Database.URL = ""
			c.Ledger.Enabled = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRedisBackendDoesNotNeedDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = StoreBackendRedis
	cfg.Database.URL = ""
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Server.Env = "prod"
	assert.True(t, cfg.IsProduction())
}
