package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	conf, err := Load("agendia")
	require.NoError(t, err)

	assert.Equal(t, "agendia", conf.ServiceName)
	assert.Equal(t, "agendia", conf.DB.DBName)
	assert.Equal(t, "8080", conf.Server.Port)
	assert.Equal(t, 24, conf.JWT.ExpirationHours)
	assert.False(t, conf.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, conf.Redis.CacheTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ABILITY_CACHE_TTL", "30s")

	conf, err := Load("agendia")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", conf.DB.Host)
	assert.Equal(t, "9090", conf.Server.Port)
	assert.True(t, conf.Redis.Enabled)
	assert.Equal(t, 30*time.Second, conf.Redis.CacheTTL)
}

func TestDSNIncludesEveryField(t *testing.T) {
	db := DBConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", db.GetDSN())
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "soon")
	t.Setenv("REDIS_ENABLED", "yes please")
	t.Setenv("DB_LOG_LEVEL", "loud")

	conf, err := Load("agendia")
	require.NoError(t, err)

	assert.Equal(t, 24, conf.JWT.ExpirationHours)
	assert.False(t, conf.Redis.Enabled)
}
