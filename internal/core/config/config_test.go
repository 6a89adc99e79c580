package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_JWT_SECRET", "JWT_SECRET", "APP_DB_DSN", "DATABASE_URL", "PORT", "APP_APP_HTTP_PORT", "CONFIG_PATH"} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestReadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "from-env")

	c, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, 5000, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "sweet_events", c.Events.Topic)
	assert.Equal(t, 10, c.Limits.TimeoutSec)
	assert.Zero(t, c.Limits.PerIPRPS)
	assert.Empty(t, c.Events.Brokers)
}

func TestReadFileAndEnvOverrides(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 8080
jwt:
  secret: file-secret
  access_token_ttl_min: 15
db:
  driver: postgres
  dsn: postgres://file
events:
  brokers: [k1:9092, k2:9092]
limits:
  per_ip_rps: 5
  per_ip_burst: 10
`)
	t.Setenv("APP_DB_DSN", "postgres://env")
	t.Setenv("PORT", "9090")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", c.JWT.Secret)
	assert.Equal(t, 15, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "postgres://env", c.DB.DSN)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Events.Brokers)
	assert.Equal(t, 5.0, c.Limits.PerIPRPS)
	assert.Equal(t, 10, c.Limits.PerIPBurst)
}

func TestReadRequiresSecret(t *testing.T) {
	p := writeYAML(t, "jwt:\n  issuer: x\n")
	_, err := Read(p)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestReadRejectsBrokenYAML(t *testing.T) {
	p := writeYAML(t, "app: [unclosed\n")
	_, err := Read(p)
	assert.Error(t, err)
}
