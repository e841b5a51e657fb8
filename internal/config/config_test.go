package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFs(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.MaxDepth)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 100, cfg.Cache.Entries)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "terminal", cfg.Output)
	assert.Empty(t, cfg.BuildArgs)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/keelson.yaml", []byte(`
workers: 4
max_depth: 8
cache:
  entries: 10
  ttl: 30s
build_args:
  - VERSION=1.2
  - EMPTY=
log:
  level: debug
  format: json
output: github
`), 0o644))

	cfg, err := LoadFs(fs, "/work/keelson.yaml")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, 10, cfg.Cache.Entries)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "github", cfg.Output)

	args, err := cfg.BuildArgMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"VERSION": "1.2", "EMPTY": ""}, args)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KEELSON_WORKERS", "3")
	t.Setenv("KEELSON_CACHE_TTL", "1m")
	t.Setenv("KEELSON_LOG_LEVEL", "info")

	cfg, err := LoadFs(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadFs(afero.NewMemMapFs(), "/nowhere/keelson.yaml")
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"negative workers", "workers: -1\n", "workers must not be negative"},
		{"zero depth", "max_depth: 0\n", "max_depth must be at least 1"},
		{"bad log format", "log:\n  format: xml\n", "log.format must be text or json"},
		{"bad build arg", "build_args:\n  - =x\n", "missing name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(tt.content), 0o644))

			_, err := LoadFs(fs, "/c.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseBuildArgs(t *testing.T) {
	t.Setenv("KEELSON_TEST_FROM_ENV", "env-value")

	args, err := ParseBuildArgs([]string{"A=1", "B=x=y", "KEELSON_TEST_FROM_ENV", "KEELSON_TEST_UNSET_VAR"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"A":                     "1",
		"B":                     "x=y",
		"KEELSON_TEST_FROM_ENV": "env-value",
	}, args)
}

func TestWriteDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteDefault(fs, FileName))

	data, err := afero.ReadFile(fs, FileName)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ttl: 5m0s")
	assert.Contains(t, string(data), "max_depth: 32")

	cfg, err := LoadFs(fs, FileName)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.MaxDepth, cfg.MaxDepth)
	assert.Equal(t, def.Cache, cfg.Cache)
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, def.Output, cfg.Output)
	assert.Empty(t, cfg.BuildArgs)

	err = WriteDefault(fs, FileName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
