package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	config, err := Load("config.json5")
	require.NoError(t, err)
	require.Equal(t, Default(), config)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		port: 9000,
		database: { file: "data/file.db" },
		sii: { years: 3 },
		cache_seconds: 60,
	}`), 0644))
	t.Setenv("INDICADORES_DB_URL", "libsql://example.turso.io")
	t.Setenv("INDICADORES_DB_AUTH_TOKEN", "secret")
	t.Setenv("PORT", "7000")

	config, err := Load(filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, 7000, config.Port)
	require.Equal(t, "data/file.db", config.Database.File)
	require.Equal(t, "libsql://example.turso.io", config.Database.Url)
	require.Equal(t, "secret", config.Database.AuthToken)
	require.Equal(t, 3, config.SII.Years)
	require.Equal(t, Default().SII.BaseURL, config.SII.BaseURL)
	require.Equal(t, time.Minute, config.CacheTTL())
}

func TestLoadExplicitZeroDisables(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		schedule: "",
		cache_seconds: 0,
		previred: { bypass_cloudflare: true },
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		previred: { bypass_cloudflare: false },
	}`), 0644))

	config, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, config.Schedule)
	require.Zero(t, config.CacheSeconds)
	require.Zero(t, config.CacheTTL())
	require.False(t, config.Previred.BypassCloudflare)
	require.Equal(t, Default().Previred.URL, config.Previred.URL)
	require.Equal(t, Default().Port, config.Port)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "port out of range", modify: func(c *Config) { c.Port = 70000 }},
		{name: "bad schedule", modify: func(c *Config) { c.Schedule = "every morning" }},
		{name: "unknown timezone", modify: func(c *Config) { c.Timezone = "America/Atlantis" }},
		{name: "no database", modify: func(c *Config) { c.Database.File = "" }},
		{name: "no years", modify: func(c *Config) { c.SII.Years = 0 }},
		{name: "relative previred url", modify: func(c *Config) { c.Previred.URL = "indicadores" }},
		{name: "negative cache", modify: func(c *Config) { c.CacheSeconds = -1 }},
	}

	for _, test := range cases {
		config := Default()
		test.modify(&config)
		require.Error(t, config.Validate(), test.name)
	}

	config := Default()
	config.Schedule = ""
	config.DonationURL = ""
	require.NoError(t, config.Validate())
}

func TestClientOptions(t *testing.T) {
	config := Default()
	config.HTTP.TimeoutSeconds = 5

	opts := config.ClientOptions("https://www.sii.cl")
	require.Equal(t, "https://www.sii.cl", opts.BaseURL)
	require.Equal(t, 5*time.Second, opts.Timeout)
	require.Equal(t, config.HTTP.UserAgent, opts.UserAgent)
}
