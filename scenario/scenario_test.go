package scenario

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mateothegreat/osformula/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestsNames(t *testing.T) {
	assert.Equal(t, []Name{
		"with default value",
		"with installation via archive and version 2.6.0",
		"with installation via download and version 2.6.0",
		"with some settings given",
		"with some settings given and no default settings",
	}, Tests().Names())
	assert.Equal(t, 5, Tests().Len())
}

func TestTestsResolve(t *testing.T) {
	settings := config.Settings{
		"http_max_content_length":    10,
		"indices_queries_cache_size": 10,
	}

	tests := []struct {
		name Name
		want func(c *config.Config)
	}{
		{
			name: "with default value",
			want: func(c *config.Config) {},
		},
		{
			name: "with installation via archive and version 2.6.0",
			want: func(c *config.Config) {
				c.Version = "2.6.0"
				c.PackageSource = config.PackageSourceArchive
			},
		},
		{
			name: "with installation via download and version 2.6.0",
			want: func(c *config.Config) {
				c.Version = "2.6.0"
				c.PackageSource = config.PackageSourceDownload
			},
		},
		{
			name: "with some settings given",
			want: func(c *config.Config) {
				c.Settings = settings
			},
		},
		{
			name: "with some settings given and no default settings",
			want: func(c *config.Config) {
				c.Settings = settings
				c.UseDefaultSettings = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, err := Tests().Resolve(tt.name, config.Defaults())
			require.NoError(t, err)

			want := config.Defaults()
			tt.want(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("resolved config mismatch (-want +got):\n%s", diff)
			}
			assert.NoError(t, got.Validate())
		})
	}
}

func TestSomeSettingsKeepsDefaultSettingsFlag(t *testing.T) {
	got, err := Tests().Resolve("with some settings given", config.Defaults())
	require.NoError(t, err)

	assert.Equal(t, config.Defaults().UseDefaultSettings, got.UseDefaultSettings)
	assert.Equal(t, 10, got.Settings["http_max_content_length"])
	assert.Equal(t, 10, got.Settings["indices_queries_cache_size"])
}

func TestResolveNotFound(t *testing.T) {
	_, err := Tests().Resolve("with nothing at all", config.Defaults())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveInvalidOverride(t *testing.T) {
	table, err := New(Entry{
		Name:     "with installation via rpm",
		Override: config.Override{PackageSource: config.Ptr(config.PackageSource("rpm"))},
	})
	require.NoError(t, err)

	_, err = table.Resolve("with installation via rpm", config.Defaults())
	assert.ErrorIs(t, err, config.ErrInvalidPackageSource)
	assert.Contains(t, err.Error(), "with installation via rpm")
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(
		Entry{Name: "with default value"},
		Entry{Name: "with default value", Override: config.Override{Version: config.Ptr("2.6.0")}},
	)
	assert.ErrorIs(t, err, ErrDuplicateScenario)
}

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := New(Entry{})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestTableIsImmutable(t *testing.T) {
	entries := []Entry{{
		Name:     "with some settings given",
		Override: config.Override{Settings: config.Settings{"a": 1}},
	}}
	table, err := New(entries...)
	require.NoError(t, err)

	// Neither the caller's input nor returned copies reach the table.
	entries[0].Override.Settings["a"] = 2
	o, ok := table.Get("with some settings given")
	require.True(t, ok)
	o.Settings["a"] = 3
	all := table.All()
	all[0].Override.Settings["a"] = 4

	o, ok = table.Get("with some settings given")
	require.True(t, ok)
	assert.Equal(t, 1, o.Settings["a"])
}

func TestGetMissing(t *testing.T) {
	o, ok := Tests().Get("missing")
	assert.False(t, ok)
	assert.True(t, o.IsEmpty())
}
