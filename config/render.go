package config

import (
	"bytes"
	"fmt"
	"net/url"
	"path"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "opensearch.yml"
	packageHomeDir = "/usr/share/opensearch"
	renderHeader   = "# This file is managed by osformula. Local changes will be overwritten.\n"
	// Release bundles are published per OS and architecture. Every supported
	// platform is x86_64 Linux.
	archiveArch = "linux-x64"
)

// EffectiveSettings returns the settings written to opensearch.yml: the
// default settings when enabled, overlaid by the configured settings.
func (c Config) EffectiveSettings() Settings {
	out := Settings{}
	if c.UseDefaultSettings {
		for k, v := range c.DefaultSettings {
			out[k] = v
		}
	}
	for k, v := range c.Settings {
		out[k] = v
	}
	return out
}

// Render returns the opensearch.yml document for c, keys sorted.
func (c Config) Render() ([]byte, error) {
	settings := c.EffectiveSettings()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(renderHeader)
	if len(settings) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(settings)); err != nil {
		return nil, fmt.Errorf("render %s: %w", configFileName, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("render %s: %w", configFileName, err)
	}
	return buf.Bytes(), nil
}

func (c Config) ConfigFile() string {
	return path.Join(c.ConfigDir, configFileName)
}

// HomeDir is where the OpenSearch distribution lives once installed.
func (c Config) HomeDir() string {
	if c.PackageSource.IsTarball() {
		return path.Join(c.InstallDir, "opensearch-"+c.Version)
	}
	return packageHomeDir
}

func (c Config) ArchiveFile() string {
	return "opensearch-" + c.Version + "-" + archiveArch + ".tar.gz"
}

// ArchiveURL is the release tarball location for the configured version.
func (c Config) ArchiveURL() (string, error) {
	u, err := url.JoinPath(c.ArchiveBaseURL, c.Version, c.ArchiveFile())
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidURL, c.ArchiveBaseURL, err)
	}
	return u, nil
}

// RepoVersion is the package repository series for the configured version,
// e.g. "2.x" for 2.6.0.
func (c Config) RepoVersion() (string, error) {
	v, err := semver.StrictNewVersion(c.Version)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidVersion, c.Version, err)
	}
	return fmt.Sprintf("%d.x", v.Major()), nil
}

// RepoURL is the package repository location for the configured version
// series in the given repository format ("apt" or "yum").
func (c Config) RepoURL(format string) (string, error) {
	series, err := c.RepoVersion()
	if err != nil {
		return "", err
	}
	u, err := url.JoinPath(c.RepoBaseURL, series, format)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidURL, c.RepoBaseURL, err)
	}
	return u, nil
}
