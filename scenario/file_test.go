package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mateothegreat/osformula/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableFile = `scenarios:
  - name: with default value
  - name: with installation via archive and version 2.6.0
    version: 2.6.0
    package_source: archive
  - name: with some settings given and no default settings
    use_default_settings: false
    settings:
      http_max_content_length: 10
      indices_queries_cache_size: 10
`

func TestLoad(t *testing.T) {
	table, err := Load(strings.NewReader(tableFile))
	require.NoError(t, err)

	assert.Equal(t, []Name{
		"with default value",
		"with installation via archive and version 2.6.0",
		"with some settings given and no default settings",
	}, table.Names())

	o, ok := table.Get("with installation via archive and version 2.6.0")
	require.True(t, ok)
	assert.Equal(t, "2.6.0", *o.Version)
	assert.Equal(t, config.PackageSourceArchive, *o.PackageSource)
	assert.Nil(t, o.UseDefaultSettings)

	o, ok = table.Get("with some settings given and no default settings")
	require.True(t, ok)
	assert.False(t, *o.UseDefaultSettings)
	assert.Equal(t, config.Settings{
		"http_max_content_length":    10,
		"indices_queries_cache_size": 10,
	}, o.Settings)

	o, ok = table.Get("with default value")
	require.True(t, ok)
	assert.True(t, o.IsEmpty())
}

func TestLoadEmpty(t *testing.T) {
	table, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{
			name: "duplicate name",
			in:   "scenarios:\n  - name: a\n  - name: a\n    version: 2.6.0\n",
			want: ErrDuplicateScenario,
		},
		{
			name: "missing name",
			in:   "scenarios:\n  - version: 2.6.0\n",
			want: ErrEmptyName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadUnknownOption(t *testing.T) {
	_, err := Load(strings.NewReader("scenarios:\n  - name: a\n    heap_size: 1g\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heap_size")
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(strings.NewReader("scenarios: [\n"))
	assert.Error(t, err)
}

func TestWriteThenLoadBuiltin(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Tests()))

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Tests().All(), table.All())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
