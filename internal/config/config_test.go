package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MESSAGE_EDIT_WINDOW", "")
	t.Setenv("REALTIME_EVENT_LIMIT", "not-a-number")
	t.Setenv("OTEL_ENABLED", "")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.Realtime.MessageEditWindow)
	assert.Equal(t, 120, cfg.Realtime.EventLimit)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MESSAGE_EDIT_WINDOW", "1h")
	t.Setenv("REALTIME_EVENT_LIMIT", "10")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg := Load()

	assert.Equal(t, time.Hour, cfg.Realtime.MessageEditWindow)
	assert.Equal(t, 10, cfg.Realtime.EventLimit)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverPostgres, Connection: "postgres://localhost/db"},
			Security: SecurityConfig{JWTSecret: "jwt", MessageEncryptionKey: "key"},
		}
	}

	assert.NoError(t, valid().Validate())

	noKey := valid()
	noKey.Security.MessageEncryptionKey = ""
	assert.ErrorContains(t, noKey.Validate(), "MESSAGE_ENCRYPTION_KEY")

	noSecret := valid()
	noSecret.Security.JWTSecret = ""
	assert.ErrorContains(t, noSecret.Validate(), "JWT_SECRET")

	noDSN := valid()
	noDSN.Database.Connection = ""
	assert.Error(t, noDSN.Validate())

	memory := valid()
	memory.Database = DatabaseConfig{Driver: DriverMemory}
	assert.NoError(t, memory.Validate())

	unknown := valid()
	unknown.Database.Driver = "mongo"
	assert.Error(t, unknown.Validate())
}
