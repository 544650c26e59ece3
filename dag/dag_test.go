package dag

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids[T any](levels [][]*Node[T]) [][]string {
	var out [][]string
	for _, level := range levels {
		var batch []string
		for _, node := range level {
			batch = append(batch, node.ID)
		}
		out = append(out, batch)
	}
	return out
}

func newCheckGraph(t *testing.T) *Graph[int] {
	g := New[int]()

	for i, id := range []string{
		"repository",
		"install_package",
		"install_archive",
		"install",
		"config",
		"service",
	} {
		_, err := g.AddNode(id, i)
		require.NoError(t, err)
	}

	vertexes := [][]string{
		{"repository", "install_package"},
		{"install_package", "install"},
		{"install_archive", "install"},
		{"install", "config"},
		{"config", "service"},
	}
	for _, vertex := range vertexes {
		if _, err := g.AddEdge(vertex[0], vertex[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestLevels(t *testing.T) {
	g := newCheckGraph(t)

	levels, err := g.Levels(nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"repository", "install_archive"},
		{"install_package"},
		{"install"},
		{"config"},
		{"service"},
	}, ids(levels))
}

func TestLevelsSubset(t *testing.T) {
	g := newCheckGraph(t)

	required, err := g.Ancestors("install")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"repository":      true,
		"install_package": true,
		"install_archive": true,
		"install":         true,
	}, required)

	levels, err := g.Levels(required)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"repository", "install_archive"},
		{"install_package"},
		{"install"},
	}, ids(levels))
}

func TestParents(t *testing.T) {
	g := newCheckGraph(t)

	assert.Equal(t, []string{"install_package", "install_archive"}, g.Parents("install"))
	assert.Empty(t, g.Parents("repository"))
}

func TestAncestorsUnknown(t *testing.T) {
	g := newCheckGraph(t)

	_, err := g.Ancestors("nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestAddNodeDuplicate(t *testing.T) {
	g := New[string]()
	_, err := g.AddNode("config", "a")
	require.NoError(t, err)

	_, err = g.AddNode("config", "b")
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Len(t, g.Nodes, 1)
}

func TestAddEdgeErrors(t *testing.T) {
	g := newCheckGraph(t)

	_, err := g.AddEdge("missing", "config")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = g.AddEdge("config", "missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = g.AddEdge("service", "repository")
	assert.ErrorIs(t, err, ErrCycle)

	_, err = g.AddEdge("config", "config")
	assert.ErrorIs(t, err, ErrCycle)

	assert.Len(t, g.Edges, 5)
}

func TestAddEdgeMultipleTargets(t *testing.T) {
	g := New[struct{}]()
	for _, id := range []string{"a", "b", "c"} {
		_, err := g.AddNode(id, struct{}{})
		require.NoError(t, err)
	}

	edges, err := g.AddEdge("a", "b", "c")
	require.NoError(t, err)
	assert.Len(t, edges, 2)

	// A bad target rejects the whole call.
	_, err = g.AddEdge("b", "c", "a")
	assert.ErrorIs(t, err, ErrCycle)
	assert.Len(t, g.Edges, 2)
}

func TestWriteD2(t *testing.T) {
	g := newCheckGraph(t)
	_, err := g.AddNode("lonely", 99)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.WriteD2(&buf))
	assert.Equal(t, "repository -> install_package\n"+
		"install_package -> install\n"+
		"install -> config\n"+
		"config -> service\n"+
		"install_archive -> install\n"+
		"lonely\n", buf.String())
}

func TestToD2(t *testing.T) {
	g := newCheckGraph(t)
	path := filepath.Join(t.TempDir(), "dag.d2")

	require.NoError(t, g.ToD2(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "config -> service\n")
}
