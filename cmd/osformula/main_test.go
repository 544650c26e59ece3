package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, err := newRootCommand()
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "with default value\n"+
		"with installation via archive and version 2.6.0\n"+
		"with installation via download and version 2.6.0\n"+
		"with some settings given\n"+
		"with some settings given and no default settings\n", out)
}

func TestListYAMLRoundTrip(t *testing.T) {
	out, err := execute(t, "list", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "package_source: archive")

	path := writeTable(t, out)
	again, err := execute(t, "list", "--yaml", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestListFromEnvironment(t *testing.T) {
	path := writeTable(t, "scenarios:\n  - name: from the environment\n")
	t.Setenv("OSFORMULA_CONFIG", path)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "from the environment\n", out)
}

func TestShow(t *testing.T) {
	out, err := execute(t, "show", "with installation via archive and version 2.6.0")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 2.6.0\n")
	assert.Contains(t, out, "package_source: archive\n")
	assert.Contains(t, out, "use_default_settings: true\n")
}

func TestShowUnknown(t *testing.T) {
	_, err := execute(t, "show", "with nothing")
	assert.ErrorContains(t, err, "scenario not found")
}

func TestRender(t *testing.T) {
	out, err := execute(t, "render", "with some settings given and no default settings")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "http_max_content_length: 10\nindices_queries_cache_size: 10\n"), out)
	assert.NotContains(t, out, "cluster.name")
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "--platform", "debian")
	require.NoError(t, err)
	assert.Contains(t, out, "SCENARIO")
	assert.Contains(t, out, "26 passed, 0 failed, 14 skipped\n")
}

func TestRunJSON(t *testing.T) {
	out, err := execute(t, "run", "-o", "json", "-p", "redhat")
	require.NoError(t, err)

	var results []jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 5*8)
	for _, r := range results {
		assert.Equal(t, "centos-7-x86_64", r.Platform)
		assert.NotEqual(t, "failed", r.Status, r.Error)
	}
}

func TestRunRejectedScenario(t *testing.T) {
	path := writeTable(t, "scenarios:\n  - name: with installation via rpm\n    package_source: rpm\n")

	out, err := execute(t, "run", "-c", path, "-p", "debian")
	assert.ErrorContains(t, err, "1 checks failed")
	assert.Contains(t, out, "prepare")
	assert.Contains(t, out, "invalid package source")
}

func TestRunBadFlags(t *testing.T) {
	_, err := execute(t, "run", "-o", "xml")
	assert.Error(t, err)

	_, err = execute(t, "run", "-p", "windows")
	assert.ErrorContains(t, err, "unsupported platform")
}

func TestBadLogLevel(t *testing.T) {
	t.Setenv("OSFORMULA_LOG_LEVEL", "loud")

	_, err := execute(t, "list")
	assert.ErrorContains(t, err, "failed to initialize logger")
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "install -> config\n")

	path := filepath.Join(t.TempDir(), "checks.d2")
	_, err = execute(t, "graph", "--out", path)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(b))
}
