package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.DebounceMS)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDelay())
	assert.Equal(t, 2, cfg.MinSearchLength)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.HasAlgolia())
}

func TestLoadFromOverrides(t *testing.T) {
	dir := t.TempDir()
	base := writeConfig(t, dir, "base.toml", `
debounce_ms = 500
min_search_length = 3

[store]
path = "/var/lib/panelsearch/base.db"
`)
	local := writeConfig(t, dir, "local.toml", `
debounce_ms = 150
descriptors = "~/descriptors.toml"

[store]
driver = "DynamoDB"
table = "panel-snapshots"

[algolia]
index = "almuerzos"
secret_arn = "arn:aws:secretsmanager:us-east-1:123456789012:secret:algolia"
`)

	cfg, err := LoadFrom(base, local)
	require.NoError(t, err)

	assert.Equal(t, 150*time.Millisecond, cfg.DebounceDelay(), "later files win")
	assert.Equal(t, 3, cfg.MinSearchLength, "unset keys keep earlier values")
	assert.Equal(t, DriverDynamoDB, cfg.Store.Driver)
	assert.Equal(t, "panel-snapshots", cfg.Store.Table)
	assert.Equal(t, "/var/lib/panelsearch/base.db", cfg.Store.Path)
	assert.True(t, cfg.HasAlgolia())
	assert.Equal(t, "almuerzos", cfg.Algolia.Index)

	home, err := os.UserHomeDir()
	if err == nil {
		assert.Equal(t, filepath.Join(home, "descriptors.toml"), cfg.Descriptors)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tests := map[string]string{
		"negative_debounce": `debounce_ms = -1`,
		"zero_min_length":   `min_search_length = 0`,
		"unknown_driver": `
[store]
driver = "postgres"
`,
		"dynamodb_without_table": `
[store]
driver = "dynamodb"
`,
		"malformed": `debounce_ms = `,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.toml", content)
			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "", expandPath(""))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, "rel/path", expandPath("rel/path"))
}
