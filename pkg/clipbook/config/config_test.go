package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/clipbook/pkg/clipbook/config"
	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
)

func TestMain(m *testing.M) {
	homedir.DisableCache = true
	os.Exit(m.Run())
}

// isolate points HOME and XDG_CONFIG_HOME at a fresh directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func load(t *testing.T, configFile string) (*config.Config, error) {
	t.Helper()
	v, err := config.New()
	require.NoError(t, err)
	return config.Load(v, configFile)
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBackend, cfg.Library.Backend)
	assert.Equal(t, config.DefaultLibraryPath(), cfg.Library.Path)
	assert.Empty(t, cfg.Library.Examples)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, config.DefaultRetentionDays, cfg.Backup.RetentionDays)
	assert.Equal(t, config.DefaultBackupDir(), cfg.Backup.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "tree", cfg.Output.Format)

	size, err := cfg.Logging.MaxSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), size)
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "clipbook")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
library:
  backend: sqlite
  path: ~/clips.db
backup:
  enabled: false
  retention_days: 7
logging:
  level: debug
  max_size: 1MiB
output:
  format: json
`), 0o644))

	cfg, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, settings.BackendSQLite, cfg.Library.Backend)
	assert.Equal(t, filepath.Join(home, "clips.db"), cfg.Library.Path)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 7, cfg.Backup.RetentionDays)
	assert.Equal(t, "json", cfg.Output.Format)

	lc, err := cfg.LoggingSetup()
	require.NoError(t, err)
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, int64(1<<20), lc.MaxSize)
	assert.Equal(t, config.DefaultLogMaxBackups, lc.MaxBackups)
}

func TestLoad_ExplicitFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\n"), 0o644))

	cfg, err := load(t, "~/custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.Format)

	_, err = load(t, filepath.Join(home, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_XDGConfigHome(t *testing.T) {
	home := isolate(t)
	xdgDir := filepath.Join(home, "xdg-config")
	t.Setenv("XDG_CONFIG_HOME", xdgDir)
	require.NoError(t, os.MkdirAll(filepath.Join(xdgDir, "clipbook"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdgDir, "clipbook", "config.yaml"), []byte("library:\n  backend: diskv\n"), 0o644))

	cfg, err := load(t, "")
	require.NoError(t, err)
	assert.Equal(t, settings.BackendDiskv, cfg.Library.Backend)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("CLIPBOOK_LIBRARY_BACKEND", "badger")
	t.Setenv("CLIPBOOK_OUTPUT_FORMAT", "yaml")

	cfg, err := load(t, "")
	require.NoError(t, err)
	assert.Equal(t, settings.BackendBadger, cfg.Library.Backend)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"CLIPBOOK_LIBRARY_BACKEND": "redis"}},
		{name: "bad level", env: map[string]string{"CLIPBOOK_LOGGING_LEVEL": "loud"}},
		{name: "bad size", env: map[string]string{"CLIPBOOK_LOGGING_MAX_SIZE": "huge"}},
		{name: "negative retention", env: map[string]string{"CLIPBOOK_BACKUP_RETENTION_DAYS": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(t, "")
			assert.Error(t, err)
		})
	}

	t.Run("unknown backend wraps sentinel", func(t *testing.T) {
		isolate(t)
		t.Setenv("CLIPBOOK_LIBRARY_BACKEND", "redis")
		_, err := load(t, "")
		assert.ErrorIs(t, err, settings.ErrUnknownBackend)
	})
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		dir, err := config.ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/custom/config/clipbook", dir)
	})

	t.Run("falls back to HOME/.config", func(t *testing.T) {
		home := isolate(t)
		path, err := config.ConfigPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "clipbook", "config.yaml"), path)
	})
}

func TestWriteDefault(t *testing.T) {
	home := isolate(t)

	path, created, err := config.WriteDefault("")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(home, ".config", "clipbook", "config.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed config.Config
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, config.DefaultBackend, parsed.Library.Backend)
	assert.Equal(t, config.DefaultFormat, parsed.Output.Format)

	cfg, err := load(t, "")
	require.NoError(t, err)
	assert.True(t, cfg.Backup.Enabled)

	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o644))
	_, created, err = config.WriteDefault("")
	require.NoError(t, err)
	assert.False(t, created)
	data, _ = os.ReadFile(path)
	assert.Equal(t, "# mine\n", string(data))
}
