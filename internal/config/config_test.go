package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("QC_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 90*time.Second, cfg.QC.CacheTTL)
	assert.Equal(t, 1024, cfg.QC.CacheSize)
	assert.False(t, cfg.MinIO.Enabled)
	assert.Contains(t, cfg.Database.DSN(), "dbname=nimo_qc")
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "nimo-qc", cfg.JWT.Issuer)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("NIMO_QC_PROBE", "")
	assert.Equal(t, "fallback", GetEnvOrDefault("NIMO_QC_PROBE", "fallback"))
	t.Setenv("NIMO_QC_PROBE", "set")
	assert.Equal(t, "set", GetEnvOrDefault("NIMO_QC_PROBE", "fallback"))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}
