package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-commerce-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("SESSION_STORE", "")
	t.Setenv("SFCC_SITE_ID", "")
	t.Setenv("HTTP_TIMEOUT", "")

	c := config.New()
	require.Equal(t, config.FileStore, c.GetStoreType())
	require.Equal(t, "RefArch", c.GetSiteID())
	require.Equal(t, "commerce.session", c.GetSessionKey())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, "info", c.GetLogLevel())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("HTTP_TIMEOUT", "45")
	t.Setenv("AUTH_TIMEOUT", "1m")

	c := config.New()
	require.Equal(t, config.RedisStore, c.GetStoreType())
	require.Equal(t, 3, c.GetRedisDB())
	require.Equal(t, 45*time.Second, c.GetHTTPTimeout())
	require.Equal(t, time.Minute, c.GetAuthTimeout())

	t.Setenv("REDIS_DB", "three")
	t.Setenv("AUTH_TIMEOUT", "-5s")
	require.Equal(t, 0, c.GetRedisDB())
	require.Equal(t, 30*time.Second, c.GetAuthTimeout())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SFCC_CLIENT_ID=from-file\nSFCC_ORG_ID=f_ecom_test\n"), 0o600))
	// Existing variables are not overridden.
	t.Setenv("SFCC_ORG_ID", "from-env")
	t.Setenv("SFCC_CLIENT_ID", "")
	require.NoError(t, os.Unsetenv("SFCC_CLIENT_ID"))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-file", c.GetClientID())
	require.Equal(t, "from-env", c.GetOrganizationID())

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}
