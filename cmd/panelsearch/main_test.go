package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/filterconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const menuJSON = `{"results": [
	{"id": 1, "entrada": "Sopa de verduras", "plato_fondo": "Ají de gallina", "active": true, "fecha": "2024-05-01"},
	{"id": 2, "entrada": "Ensalada César", "plato_fondo": "Lomo saltado", "active": false, "fecha": "2024-05-15"},
	{"id": 3, "entrada": "Sopa criolla", "plato_fondo": "Arroz con pollo", "active": true, "fecha": "2024-06-02", "dieta": "Sin sal"},
	{"id": 4, "entrada": "Causa", "plato_fondo": "Sopita casera", "active": true}
]}`

func setupFiles(t *testing.T) (configPath, recordsPath string) {
	t.Helper()
	dir := t.TempDir()

	configPath = filepath.Join(dir, "panelsearch.toml")
	config := "log_level = \"error\"\n\n[store]\ndriver = \"sqlite\"\npath = \"" + filepath.ToSlash(filepath.Join(dir, "snapshots.db")) + "\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	recordsPath = filepath.Join(dir, "almuerzos.json")
	require.NoError(t, os.WriteFile(recordsPath, []byte(menuJSON), 0o644))
	return configPath, recordsPath
}

// runApp runs the CLI and returns what it printed to stdout.
func runApp(t *testing.T, args ...string) []byte {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdout := os.Stdout
	os.Stdout = w
	runErr := newApp().Run(append([]string{"panelsearch"}, args...))
	w.Close()
	os.Stdout = stdout

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, runErr)
	return out
}

// runAppWithInput runs the CLI with input on stdin.
func runAppWithInput(t *testing.T, input string, args ...string) []byte {
	t.Helper()

	in, inW, err := os.Pipe()
	require.NoError(t, err)
	_, err = inW.WriteString(input)
	require.NoError(t, err)
	inW.Close()

	stdin := os.Stdin
	os.Stdin = in
	defer func() {
		os.Stdin = stdin
		in.Close()
	}()
	return runApp(t, args...)
}

func ids(items []panelsearch.Record) []float64 {
	out := make([]float64, 0, len(items))
	for _, item := range items {
		out = append(out, item["id"].(float64))
	}
	return out
}

func TestFilterCommand(t *testing.T) {
	configPath, recordsPath := setupFiles(t)

	out := runApp(t, "--config", configPath, "filter",
		"--entity", "almuerzos",
		"--records", recordsPath,
		"--query", "sopa",
		"--filter", "selectedStatus=true",
		"--highlight",
		"--suggest", "3",
	)

	var got filterOutput
	require.NoError(t, json.Unmarshal(out, &got))

	assert.Equal(t, "almuerzos", got.Entity)
	assert.Equal(t, []float64{1, 3}, ids(got.Items))
	assert.Equal(t, panelsearch.Stats{
		Total: 4, Filtered: 2, Hidden: 2, HasResults: true,
		HasActiveSearch: true, HasActiveFilters: true, MatchPercentage: 50,
	}, got.Stats)

	require.Len(t, got.Matches, 2)
	require.Len(t, got.Matches[0], 1)
	assert.Equal(t, "entrada", got.Matches[0][0].Field)
	assert.Equal(t, "<mark>Sopa</mark> de verduras", got.Matches[0][0].Highlighted)

	assert.Equal(t, "sopa", got.Snapshot.SearchTerm)
	assert.Equal(t, "true", got.Snapshot.Filters.Get(panelsearch.KeyStatus))
	assert.Empty(t, got.SavedID)
}

func TestFilterCommandDateRangeAndLimit(t *testing.T) {
	configPath, recordsPath := setupFiles(t)

	out := runApp(t, "--config", configPath, "filter",
		"-e", "almuerzos", "-r", recordsPath,
		"--start", "2024-05-01", "--end", "2024-05-31",
		"--limit", "1",
	)

	var got filterOutput
	require.NoError(t, json.Unmarshal(out, &got))

	assert.Equal(t, 2, got.Stats.Filtered, "records without a date never pass a date range")
	assert.Equal(t, []float64{1}, ids(got.Items))
}

func TestFilterSaveAndRestore(t *testing.T) {
	configPath, recordsPath := setupFiles(t)

	out := runApp(t, "--config", configPath, "filter",
		"-e", "almuerzos", "-r", recordsPath,
		"-q", "sopa", "--filter", "selectedDiet=with", "--save",
	)
	var saved filterOutput
	require.NoError(t, json.Unmarshal(out, &saved))
	require.NotEmpty(t, saved.SavedID)
	assert.Equal(t, []float64{3}, ids(saved.Items))

	out = runApp(t, "--config", configPath, "filter", "-e", "almuerzos", "-r", recordsPath, "--restore")
	var restored filterOutput
	require.NoError(t, json.Unmarshal(out, &restored))
	assert.Equal(t, saved.Snapshot, restored.Snapshot)
	assert.Equal(t, []float64{3}, ids(restored.Items))

	out = runApp(t, "--config", configPath, "snapshots", "-e", "almuerzos")
	var entries []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(out, &entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, saved.SavedID, entries[0].ID)
}

func TestEntitiesCommand(t *testing.T) {
	configPath, _ := setupFiles(t)

	var entities []string
	require.NoError(t, json.Unmarshal(runApp(t, "--config", configPath, "entities"), &entities))
	assert.Equal(t, filterconfig.Entities(), entities)
	assert.Contains(t, entities, "almuerzos")
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr string
	}{
		{
			name: "pairs",
			raw:  []string{"selectedStatus=true", " selectedCategory = 2 "},
			want: map[string]string{"selectedStatus": "true", "selectedCategory": "2"},
		},
		{
			name: "later pair wins",
			raw:  []string{"selectedStatus=true", "selectedStatus=false"},
			want: map[string]string{"selectedStatus": "false"},
		},
		{
			name: "empty value clears",
			raw:  []string{"selectedStatus="},
			want: map[string]string{"selectedStatus": ""},
		},
		{
			name: "value may contain equals",
			raw:  []string{"selectedCategory=a=b"},
			want: map[string]string{"selectedCategory": "a=b"},
		},
		{name: "missing separator", raw: []string{"selectedStatus"}, wantErr: "key=value"},
		{name: "empty item", raw: []string{"  "}, wantErr: "cannot be empty"},
		{name: "empty key", raw: []string{"=true"}, wantErr: "non-empty"},
		{name: "date range", raw: []string{"dateRange=2024-05-01"}, wantErr: "--start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilters(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoteOptions(t *testing.T) {
	exprs := []panelsearch.Expression{panelsearch.Bool("active", "true")}
	cfg := panelsearch.NewSearchConfig(remoteOptions(filterconfig.Almuerzos, 3, 0, -5, exprs)...)

	assert.Equal(t, filterconfig.Almuerzos.SearchFields, cfg.Fields)
	assert.Equal(t, 3, cfg.MinSearchLength)
	assert.Equal(t, 100, cfg.Limit)
	assert.Equal(t, 0, cfg.Offset)
	assert.Equal(t, exprs, cfg.Filters)
}

func TestWatchCommandDebouncesTerms(t *testing.T) {
	configPath, recordsPath := setupFiles(t)
	config, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, append([]byte("debounce_ms = 60000\n"), config...), 0o644))

	out := runAppWithInput(t, "so\nsop\nsopa\n", "--config", configPath, "watch", "-e", "almuerzos", "-r", recordsPath)

	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	require.Len(t, lines, 1, "terms typed within the debounce delay apply once")

	var got watchOutput
	require.NoError(t, json.Unmarshal(lines[0], &got))
	assert.Equal(t, "sopa", got.Term)
	assert.Equal(t, []float64{1, 3}, ids(got.Items))
	assert.Equal(t, 2, got.Stats.Filtered)
}

func TestWatchCommandWithoutDebounce(t *testing.T) {
	configPath, recordsPath := setupFiles(t)
	config, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, append([]byte("debounce_ms = 0\n"), config...), 0o644))

	out := runAppWithInput(t, "sopa\ncausa\n", "--config", configPath, "watch", "-e", "almuerzos", "-r", recordsPath)

	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second watchOutput
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, []float64{1, 3}, ids(first.Items))
	assert.Equal(t, []float64{4}, ids(second.Items))
}

func TestConfigFromReportsLoadError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile(filepath.Join(dir, "panelsearch.toml"), []byte("min_search_length = 0\n"), 0o644))

	c := cli.NewContext(newApp(), nil, nil)
	c.Context = context.Background()

	cfg, err := configFrom(c)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "min_search_length")
}
