package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mateothegreat/osformula/config"
	"gopkg.in/yaml.v3"
)

// FileScenario is one scenario as written in a table file. The override
// options sit next to the name:
//
//	scenarios:
//	  - name: with installation via archive and version 2.6.0
//	    version: 2.6.0
//	    package_source: archive
type FileScenario struct {
	Name            string `yaml:"name" json:"name"`
	config.Override `yaml:",inline"`
}

// File is the on-disk form of a Table.
type File struct {
	Scenarios []FileScenario `yaml:"scenarios" json:"scenarios"`
}

// Load reads a table file. Unknown options and duplicate names are errors.
func Load(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return New()
		}
		return nil, fmt.Errorf("decode scenario table: %w", err)
	}

	entries := make([]Entry, 0, len(f.Scenarios))
	for _, s := range f.Scenarios {
		entries = append(entries, Entry{Name: Name(s.Name), Override: s.Override})
	}
	return New(entries...)
}

func LoadFile(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Load(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Write encodes t in the table file format.
func Write(w io.Writer, t *Table) error {
	f := File{Scenarios: make([]FileScenario, 0, t.Len())}
	for _, e := range t.All() {
		f.Scenarios = append(f.Scenarios, FileScenario{Name: string(e.Name), Override: e.Override})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode scenario table: %w", err)
	}
	return enc.Close()
}
