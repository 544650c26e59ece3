// Package scenario holds the table of named configuration overrides the suite
// runs through the shared check groups.
package scenario

import (
	"errors"
	"fmt"

	"github.com/mateothegreat/osformula/config"
)

var (
	ErrDuplicateScenario = errors.New("duplicate scenario name")
	ErrEmptyName         = errors.New("scenario name must not be empty")
	ErrNotFound          = errors.New("scenario not found")
)

// Name labels one scenario in reports.
type Name string

// Entry is one row of a Table.
type Entry struct {
	Name     Name
	Override config.Override
}

// Table is an immutable, ordered mapping of scenario name to override.
type Table struct {
	entries []Entry
	index   map[Name]int
}

// New builds a table from entries, keeping their order. Empty and duplicate
// names are rejected.
func New(entries ...Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[Name]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, ErrEmptyName
		}
		if _, ok := t.index[e.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateScenario, e.Name)
		}
		t.index[e.Name] = len(t.entries)
		t.entries = append(t.entries, Entry{Name: e.Name, Override: e.Override.Clone()})
	}
	return t, nil
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Names returns the scenario names in declaration order.
func (t *Table) Names() []Name {
	names := make([]Name, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// All returns a copy of every entry in declaration order.
func (t *Table) All() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = Entry{Name: e.Name, Override: e.Override.Clone()}
	}
	return out
}

// Get returns a copy of the override registered under name.
func (t *Table) Get(name Name) (config.Override, bool) {
	i, ok := t.index[name]
	if !ok {
		return config.Override{}, false
	}
	return t.entries[i].Override.Clone(), true
}

// Resolve merges the override registered under name onto base.
func (t *Table) Resolve(name Name, base config.Config) (config.Config, error) {
	o, ok := t.Get(name)
	if !ok {
		return config.Config{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	c, err := config.Merge(base, o)
	if err != nil {
		return config.Config{}, fmt.Errorf("scenario %q: %w", name, err)
	}
	return c, nil
}
