package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`
	Sales struct {
		Retry struct {
			MaxAttempts int `koanf:"maxattempts"`
		} `koanf:"retry"`
	} `koanf:"sales"`
}

func (c *testConfig) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database URL is not configured")
	}
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "config.yaml"), "database:\n  url: postgres://file/farm\nsales:\n  retry:\n    maxattempts: 2\n")
	t.Setenv("FARMSTORE_SALES_RETRY_MAXATTEMPTS", "7")

	// when
	cfg, err := Load[*testConfig]("farmstore")

	// then
	require.NoError(t, err)
	require.Equal(t, "postgres://file/farm", cfg.Database.URL)
	require.Equal(t, 7, cfg.Sales.Retry.MaxAttempts)
}

func TestLoad_DotEnvFile(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, ".env"), "FARMSTORE_DATABASE_URL=postgres://dotenv/farm\n")

	// when
	cfg, err := Load[*testConfig]("farmstore")

	// then
	require.NoError(t, err)
	require.Equal(t, "postgres://dotenv/farm", cfg.Database.URL)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Chdir(dir)
	custom := filepath.Join(dir, "custom.yaml")
	writeFile(t, custom, "database:\n  url: postgres://custom/farm\n")
	t.Setenv("FARMSTORE_CONFIG_FILE", custom)

	// when
	cfg, err := Load[*testConfig]("farmstore")

	// then
	require.NoError(t, err)
	require.Equal(t, "postgres://custom/farm", cfg.Database.URL)
}

func TestLoad_ValidationFails(t *testing.T) {
	// given
	t.Chdir(t.TempDir())

	// when
	_, err := Load[*testConfig]("farmstore")

	// then
	require.ErrorContains(t, err, "config validation failed")
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FARMSTORE_CONFIG_FILE", filepath.Join(dir, "absent.yaml"))

	// when
	_, err := Load[*testConfig]("farmstore")

	// then
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_DotEnvIgnoresForeignPrefix(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "config.yaml"), "database:\n  url: postgres://file/farm\n")
	writeFile(t, filepath.Join(dir, ".env"), "OTHER_DATABASE_URL=postgres://other/farm\n")

	// when
	cfg, err := Load[*testConfig]("farmstore")

	// then
	require.NoError(t, err)
	require.Equal(t, "postgres://file/farm", cfg.Database.URL)
}

func Test_envKey(t *testing.T) {
	keyOf := envKey("FARMSTORE_")
	require.Equal(t, "sales.retry.maxattempts", keyOf("FARMSTORE_SALES_RETRY_MAXATTEMPTS"))
	require.Equal(t, "database.url", keyOf("FARMSTORE_DATABASE_URL"))
}
