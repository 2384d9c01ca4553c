package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "Memory")

	cfg := Load()
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "ROLE_USER", cfg.DefaultRole)
	assert.Equal(t, "ROLE_ADMIN", cfg.AdminRole)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 4, cfg.HashWorkers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("HASH_WORKERS", "many")
	t.Setenv("EVENTS_ENABLED", "perhaps")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 4, cfg.HashWorkers)
	assert.False(t, cfg.EventsEnabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{JWTSecret: "k", JWTTTL: time.Minute, DefaultRole: "ROLE_USER", HashWorkers: 1, StoreDriver: StorePostgres}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, "JWT_TTL must be positive"},
		{"blank default role", func(c *Config) { c.DefaultRole = "  " }, "DEFAULT_ROLE is required"},
		{"no workers", func(c *Config) { c.HashWorkers = 0 }, "HASH_WORKERS must be at least 1"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitLists(t *testing.T) {
	c := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test", ElasticsearchAddrs: ""}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins())
	assert.Empty(t, c.ESAddrs())
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	c := &Config{DBUser: "svc", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "users", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://svc:p%40ss%2Fword@db:5432/users?sslmode=disable", c.PostgresDSN())
}
