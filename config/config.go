// Package config holds the resolved formula configuration, the baseline
// defaults, and the merge of scenario overrides onto them.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/multierr"
)

var (
	ErrInvalidPackageSource = errors.New("invalid package source")
	ErrInvalidVersion       = errors.New("invalid version")
	ErrNonScalarSetting     = errors.New("setting value is not a scalar")
	ErrInvalidServiceEnsure = errors.New("invalid service ensure")
	ErrInvalidPath          = errors.New("path must be absolute")
	ErrInvalidURL           = errors.New("invalid url")
	ErrEmptyValue           = errors.New("value must not be empty")
)

// PackageSource selects how OpenSearch gets onto the host.
type PackageSource string

const (
	// PackageSourcePackage installs from the OS package repository.
	PackageSourcePackage PackageSource = "package"
	// PackageSourceArchive extracts the release tarball with an archive resource.
	PackageSourceArchive PackageSource = "archive"
	// PackageSourceDownload fetches the release tarball and unpacks it in place.
	PackageSourceDownload PackageSource = "download"
)

// IsTarball reports whether the source installs from the release tarball.
func (s PackageSource) IsTarball() bool {
	return s == PackageSourceArchive || s == PackageSourceDownload
}

type ServiceEnsure string

const (
	ServiceRunning ServiceEnsure = "running"
	ServiceStopped ServiceEnsure = "stopped"
)

func (e ServiceEnsure) valid() bool {
	return e == ServiceRunning || e == ServiceStopped
}

// Config is a fully resolved formula configuration.
type Config struct {
	Version            string        `yaml:"version" json:"version"`
	PackageSource      PackageSource `yaml:"package_source" json:"package_source"`
	PackageName        string        `yaml:"package_name" json:"package_name"`
	ArchiveBaseURL     string        `yaml:"archive_base_url" json:"archive_base_url"`
	RepoBaseURL        string        `yaml:"repo_base_url" json:"repo_base_url"`
	InstallDir         string        `yaml:"install_dir" json:"install_dir"`
	ConfigDir          string        `yaml:"config_dir" json:"config_dir"`
	ManageRepo         bool          `yaml:"manage_repo" json:"manage_repo"`
	ServiceName        string        `yaml:"service_name" json:"service_name"`
	ServiceEnsure      ServiceEnsure `yaml:"service_ensure" json:"service_ensure"`
	ServiceEnable      bool          `yaml:"service_enable" json:"service_enable"`
	User               string        `yaml:"user" json:"user"`
	Group              string        `yaml:"group" json:"group"`
	Settings           Settings      `yaml:"settings" json:"settings"`
	DefaultSettings    Settings      `yaml:"default_settings" json:"default_settings"`
	UseDefaultSettings bool          `yaml:"use_default_settings" json:"use_default_settings"`
}

// Defaults returns the baseline configuration. Every call returns a fresh
// value, so callers may modify the result freely.
func Defaults() Config {
	return Config{
		Version:        "2.5.0",
		PackageSource:  PackageSourcePackage,
		PackageName:    "opensearch",
		ArchiveBaseURL: "https://artifacts.opensearch.org/releases/bundle/opensearch",
		RepoBaseURL:    "https://artifacts.opensearch.org/releases/bundle/opensearch",
		InstallDir:     "/opt",
		ConfigDir:      "/etc/opensearch",
		ManageRepo:     true,
		ServiceName:    "opensearch",
		ServiceEnsure:  ServiceRunning,
		ServiceEnable:  true,
		User:           "opensearch",
		Group:          "opensearch",
		Settings:       Settings{},
		DefaultSettings: Settings{
			"cluster.name": "opensearch",
			"network.host": "127.0.0.1",
			"path.data":    "/var/lib/opensearch",
			"path.logs":    "/var/log/opensearch",
		},
		UseDefaultSettings: true,
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	out.Settings = c.Settings.Clone()
	out.DefaultSettings = c.DefaultSettings.Clone()
	return out
}

// Validate checks the whole configuration and reports every problem found.
func (c Config) Validate() error {
	var err error

	if _, verr := semver.StrictNewVersion(c.Version); verr != nil {
		err = multierr.Append(err, fmt.Errorf("%w %q: %v", ErrInvalidVersion, c.Version, verr))
	}
	switch c.PackageSource {
	case PackageSourcePackage, PackageSourceArchive, PackageSourceDownload:
	default:
		err = multierr.Append(err, fmt.Errorf("%w %q", ErrInvalidPackageSource, c.PackageSource))
	}
	if !c.ServiceEnsure.valid() {
		err = multierr.Append(err, fmt.Errorf("%w %q", ErrInvalidServiceEnsure, c.ServiceEnsure))
	}

	for _, f := range []field{
		{"package_name", c.PackageName},
		{"service_name", c.ServiceName},
		{"user", c.User},
		{"group", c.Group},
	} {
		if f.value == "" {
			err = multierr.Append(err, fmt.Errorf("%s: %w", f.key, ErrEmptyValue))
		}
	}
	for _, f := range []field{
		{"install_dir", c.InstallDir},
		{"config_dir", c.ConfigDir},
	} {
		if !path.IsAbs(f.value) {
			err = multierr.Append(err, fmt.Errorf("%s %q: %w", f.key, f.value, ErrInvalidPath))
		}
	}
	for _, f := range []field{
		{"archive_base_url", c.ArchiveBaseURL},
		{"repo_base_url", c.RepoBaseURL},
	} {
		if uerr := validateURL(f.value); uerr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", f.key, uerr))
		}
	}

	err = multierr.Append(err, c.Settings.Validate())
	err = multierr.Append(err, c.DefaultSettings.Validate())
	return err
}

type field struct {
	key   string
	value string
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidURL, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w %q", ErrInvalidURL, raw)
	}
	return nil
}
