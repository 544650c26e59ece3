package scenario

import "github.com/mateothegreat/osformula/config"

func someSettings() config.Settings {
	return config.Settings{
		"http_max_content_length":    10,
		"indices_queries_cache_size": 10,
	}
}

var tests = mustNew(
	Entry{
		Name: "with default value",
	},
	Entry{
		Name: "with installation via archive and version 2.6.0",
		Override: config.Override{
			Version:       config.Ptr("2.6.0"),
			PackageSource: config.Ptr(config.PackageSourceArchive),
		},
	},
	Entry{
		Name: "with installation via download and version 2.6.0",
		Override: config.Override{
			Version:       config.Ptr("2.6.0"),
			PackageSource: config.Ptr(config.PackageSourceDownload),
		},
	},
	Entry{
		Name: "with some settings given",
		Override: config.Override{
			Settings: someSettings(),
		},
	},
	Entry{
		Name: "with some settings given and no default settings",
		Override: config.Override{
			UseDefaultSettings: config.Ptr(false),
			Settings:           someSettings(),
		},
	},
)

// Tests returns the built-in scenario table.
func Tests() *Table {
	return tests
}

func mustNew(entries ...Entry) *Table {
	t, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return t
}
