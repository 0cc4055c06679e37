package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/printparts/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// isolate points HOME and the working directory at empty temp dirs so no
// real config file is found.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	s, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMeshCells, s.MeshCells)
	assert.Equal(t, config.FormatTable, s.OutputFormat)
	assert.Equal(t, "info", s.LogLevel)
	assert.False(t, s.Strict)
	assert.Empty(t, s.File)
}

func TestLoadFromHome(t *testing.T) {
	home := isolate(t)
	writeFile(t, home, ".partgen.yaml", "mesh:\n  cells: 48\noutput:\n  format: JSON\nstrict: true\n")

	s, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 48, s.MeshCells)
	assert.Equal(t, config.FormatJSON, s.OutputFormat)
	assert.True(t, s.Strict)
	assert.Equal(t, filepath.Join(home, ".partgen.yaml"), s.File)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, home, ".partgen.yaml", "mesh:\n  cells: 48\n")
	t.Setenv("PARTGEN_MESH_CELLS", "32")
	t.Setenv("PARTGEN_LOG_LEVEL", "debug")

	s, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 32, s.MeshCells)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadExplicitFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", "output:\n  format: yaml\n")

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.FormatYAML, s.OutputFormat)
	assert.Equal(t, path, s.File)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	var le *config.LoadError
	require.ErrorAs(t, err, &le)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero mesh cells", "mesh:\n  cells: 0\n"},
		{"unknown format", "output:\n  format: xml\n"},
		{"unknown log level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := writeFile(t, t.TempDir(), "bad.yaml", tt.body)
			_, err := config.Load(path)
			var le *config.LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, path, le.Path)
		})
	}
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, config.CheckFormat(config.FormatJSON))
	assert.ErrorIs(t, config.CheckFormat("csv"), config.ErrUnsupportedFormat)
}
