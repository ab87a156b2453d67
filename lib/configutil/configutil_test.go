package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int    `json:"port"`
	Schedule string `json:"schedule"`
	Nested   struct {
		Years int `json:"years"`
	} `json:"nested"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalName("config.json5"))
	require.Equal(t, "/etc/app/telemetry.local.json5", LocalName("/etc/app/telemetry.json5"))
	require.Equal(t, "config.local", LocalName("config"))
}

func TestReadInto(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	base := testConfig{Port: 8080, Schedule: "0 9 * * *"}
	base.Nested.Years = 2
	require.ErrorIs(t, ReadInto(name, &base), os.ErrNotExist)
	require.Equal(t, 8080, base.Port)

	write(t, name, `{
		// comments are allowed
		port: 3000,
		nested: { years: 3 },
	}`)
	require.NoError(t, ReadInto(name, &base))
	require.Equal(t, 3000, base.Port)
	require.Equal(t, "0 9 * * *", base.Schedule)
	require.Equal(t, 3, base.Nested.Years)

	write(t, LocalName(name), `{ schedule: "@hourly" }`)
	require.NoError(t, ReadInto(name, &base))
	require.Equal(t, 3000, base.Port)
	require.Equal(t, "@hourly", base.Schedule)
}

func TestReadIntoExplicitZeroOverrides(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	base := testConfig{Port: 8080, Schedule: "0 9 * * *"}
	base.Nested.Years = 2

	write(t, name, `{ schedule: "", nested: { years: 0 } }`)
	require.NoError(t, ReadInto(name, &base))
	require.Equal(t, 8080, base.Port)
	require.Empty(t, base.Schedule)
	require.Zero(t, base.Nested.Years)

	// the local file zeroes a value the main file set
	write(t, name, `{ port: 3000 }`)
	write(t, LocalName(name), `{ port: 0 }`)
	require.NoError(t, ReadInto(name, &base))
	require.Zero(t, base.Port)
}

func TestReadIntoInvalidLeavesBase(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	write(t, name, `{ port: 3000, schedule: `)

	base := testConfig{Port: 8080, Schedule: "0 9 * * *"}
	require.Error(t, ReadInto(name, &base))
	require.Equal(t, 8080, base.Port)
	require.Equal(t, "0 9 * * *", base.Schedule)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	write(t, LocalName(name), `{ port: 1234 }`)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, 1234, config.Port)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	write(t, name, `{ port: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	write(t, filepath.Join(root, "telemetry.json5"), `{ port: 4317 }`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	config, err := ReadRecursively[testConfig]("telemetry.json5")
	require.NoError(t, err)
	require.Equal(t, 4317, config.Port)

	_, err = ReadRecursively[testConfig]("missing.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
