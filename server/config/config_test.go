package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := LoadDefaultConfig()

	assert.Equal(t, DEFAULT_CATALOG_NAME, cfg.GetCatalogName())
	assert.Equal(t, METASTORE_TYPE_MEMORY, cfg.GetMetastoreType())
	assert.Equal(t, DEFAULT_DATABASE, cfg.Catalog.DefaultDatabase)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   errors.Code
	}{
		{"empty catalog name", func(c *Config) { c.Catalog.Name = "" }, ErrCatalogNameRequired},
		{"dotted catalog name", func(c *Config) { c.Catalog.Name = "a.b" }, ErrCatalogNameInvalid},
		{"unknown metastore", func(c *Config) { c.Metastore.Type = "thrift" }, ErrMetastoreTypeInvalid},
		{"sqlite without path", func(c *Config) {
			c.Metastore.Type = METASTORE_TYPE_SQLITE
			c.Metastore.Path = ""
		}, ErrMetastorePathRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metacat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  name: prod
metastore:
  type: sqlite
  path: /var/lib/metacat/metastore.db
  version: 2.3.6
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Catalog.Name)
	assert.Equal(t, DEFAULT_DATABASE, cfg.Catalog.DefaultDatabase)
	assert.Equal(t, METASTORE_TYPE_SQLITE, cfg.Metastore.Type)
	assert.Equal(t, "2.3.6", cfg.Metastore.Version)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, ErrConfigFileReadFailed))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: ["), 0644))
	_, err = LoadConfig(path)
	assert.True(t, errors.HasCode(err, ErrConfigFileParseFailed))

	require.NoError(t, os.WriteFile(path, []byte("metastore:\n  type: thrift\n"), 0644))
	_, err = LoadConfig(path)
	assert.True(t, errors.HasCode(err, ErrConfigValidationFailed))
	assert.True(t, errors.HasCode(err, ErrMetastoreTypeInvalid))
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metacat.yaml")
	cfg := LoadDefaultConfig()
	cfg.Catalog.Name = "saved"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSetupLoggerWritesFile(t *testing.T) {
	cfg := LoadDefaultConfig().Log
	cfg.Console = false
	cfg.Level = "debug"
	cfg.FilePath = filepath.Join(t.TempDir(), "logs", "metacat.log")

	logger, lm, err := SetupLogger(&cfg)
	require.NoError(t, err)
	defer lm.Close()

	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	logger.Info().Str("k", "v").Msg("hello")

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"service":"metacat"`)
}

func TestSetupLoggerInvalidLevel(t *testing.T) {
	cfg := LogConfig{Level: "loud"}
	logger, lm, err := SetupLogger(&cfg)
	require.NoError(t, err)
	assert.Nil(t, lm)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestLogFileRotation(t *testing.T) {
	dir := t.TempDir()
	cfg := &LogConfig{FilePath: filepath.Join(dir, "metacat.log"), MaxSize: 1}
	require.NoError(t, os.WriteFile(cfg.FilePath, make([]byte, 1<<20), 0644))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f, err := openLogFile(cfg, now)
	require.NoError(t, err)
	defer f.Close()

	info, err := os.Stat(cfg.FilePath)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	_, err = os.Stat(cfg.FilePath + ".20240501T120000")
	assert.NoError(t, err)
}

func TestLogFileBelowMaxSizeIsAppended(t *testing.T) {
	cfg := &LogConfig{FilePath: filepath.Join(t.TempDir(), "metacat.log"), MaxSize: 1}
	require.NoError(t, os.WriteFile(cfg.FilePath, []byte("kept\n"), 0644))

	f, err := openLogFile(cfg, time.Now())
	require.NoError(t, err)
	_, err = f.WriteString("more\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "kept\nmore\n", string(data))
}

func TestLogFileCleanupTruncates(t *testing.T) {
	cfg := &LogConfig{FilePath: filepath.Join(t.TempDir(), "metacat.log"), Cleanup: true}
	require.NoError(t, os.WriteFile(cfg.FilePath, []byte("stale"), 0644))

	f, err := openLogFile(cfg, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestPruneBackups(t *testing.T) {
	dir := t.TempDir()
	cfg := &LogConfig{FilePath: filepath.Join(dir, "metacat.log"), MaxBackups: 2, MaxAge: 7}
	names := []string{
		"metacat.log.20240401T000000", // older than MaxAge
		"metacat.log.20240428T000000",
		"metacat.log.20240429T000000",
		"metacat.log.20240430T000000",
		"metacat.log.notes",
		"other.log.20240401T000000",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	require.NoError(t, pruneBackups(cfg, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.Equal(t, []string{
		"metacat.log.20240429T000000",
		"metacat.log.20240430T000000",
		"metacat.log.notes",
		"other.log.20240401T000000",
	}, left)
}

func TestNilLogFileClose(t *testing.T) {
	var f *LogFile
	assert.NoError(t, f.Close())
}
