package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/multierr"
)

// Override is a partial configuration. A nil field is absent and keeps the
// baseline value when merged.
type Override struct {
	Version            *string        `yaml:"version,omitempty" json:"version,omitempty"`
	PackageSource      *PackageSource `yaml:"package_source,omitempty" json:"package_source,omitempty"`
	PackageName        *string        `yaml:"package_name,omitempty" json:"package_name,omitempty"`
	ArchiveBaseURL     *string        `yaml:"archive_base_url,omitempty" json:"archive_base_url,omitempty"`
	RepoBaseURL        *string        `yaml:"repo_base_url,omitempty" json:"repo_base_url,omitempty"`
	InstallDir         *string        `yaml:"install_dir,omitempty" json:"install_dir,omitempty"`
	ConfigDir          *string        `yaml:"config_dir,omitempty" json:"config_dir,omitempty"`
	ManageRepo         *bool          `yaml:"manage_repo,omitempty" json:"manage_repo,omitempty"`
	ServiceName        *string        `yaml:"service_name,omitempty" json:"service_name,omitempty"`
	ServiceEnsure      *ServiceEnsure `yaml:"service_ensure,omitempty" json:"service_ensure,omitempty"`
	ServiceEnable      *bool          `yaml:"service_enable,omitempty" json:"service_enable,omitempty"`
	User               *string        `yaml:"user,omitempty" json:"user,omitempty"`
	Group              *string        `yaml:"group,omitempty" json:"group,omitempty"`
	Settings           Settings       `yaml:"settings,omitempty" json:"settings,omitempty"`
	UseDefaultSettings *bool          `yaml:"use_default_settings,omitempty" json:"use_default_settings,omitempty"`
}

// Ptr returns a pointer to v, for filling Override literals.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy of o.
func (o Override) Clone() Override {
	return Override{
		Version:            clonePtr(o.Version),
		PackageSource:      clonePtr(o.PackageSource),
		PackageName:        clonePtr(o.PackageName),
		ArchiveBaseURL:     clonePtr(o.ArchiveBaseURL),
		RepoBaseURL:        clonePtr(o.RepoBaseURL),
		InstallDir:         clonePtr(o.InstallDir),
		ConfigDir:          clonePtr(o.ConfigDir),
		ManageRepo:         clonePtr(o.ManageRepo),
		ServiceName:        clonePtr(o.ServiceName),
		ServiceEnsure:      clonePtr(o.ServiceEnsure),
		ServiceEnable:      clonePtr(o.ServiceEnable),
		User:               clonePtr(o.User),
		Group:              clonePtr(o.Group),
		Settings:           o.Settings.Clone(),
		UseDefaultSettings: clonePtr(o.UseDefaultSettings),
	}
}

// IsEmpty reports whether the override leaves every default untouched.
func (o Override) IsEmpty() bool {
	return len(o.Keys()) == 0
}

// Keys returns the names of the options the override sets, in declaration
// order of the options.
func (o Override) Keys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(o.Version != nil, "version")
	add(o.PackageSource != nil, "package_source")
	add(o.PackageName != nil, "package_name")
	add(o.ArchiveBaseURL != nil, "archive_base_url")
	add(o.RepoBaseURL != nil, "repo_base_url")
	add(o.InstallDir != nil, "install_dir")
	add(o.ConfigDir != nil, "config_dir")
	add(o.ManageRepo != nil, "manage_repo")
	add(o.ServiceName != nil, "service_name")
	add(o.ServiceEnsure != nil, "service_ensure")
	add(o.ServiceEnable != nil, "service_enable")
	add(o.User != nil, "user")
	add(o.Group != nil, "group")
	add(len(o.Settings) > 0, "settings")
	add(o.UseDefaultSettings != nil, "use_default_settings")
	return keys
}

// Validate checks the values the override sets. An override may only switch
// the package source to one of the tarball installs, the repository install
// being the baseline.
func (o Override) Validate() error {
	var err error
	if o.Version != nil {
		if _, verr := semver.StrictNewVersion(*o.Version); verr != nil {
			err = multierr.Append(err, fmt.Errorf("%w %q: %v", ErrInvalidVersion, *o.Version, verr))
		}
	}
	if o.PackageSource != nil && !o.PackageSource.IsTarball() {
		err = multierr.Append(err, fmt.Errorf("%w %q: must be %q or %q",
			ErrInvalidPackageSource, *o.PackageSource, PackageSourceArchive, PackageSourceDownload))
	}
	if o.ServiceEnsure != nil && !o.ServiceEnsure.valid() {
		err = multierr.Append(err, fmt.Errorf("%w %q", ErrInvalidServiceEnsure, *o.ServiceEnsure))
	}
	return multierr.Append(err, o.Settings.Validate())
}

// Merge applies o on top of base and returns the result. Options o leaves
// unset keep their base value; settings are merged key by key. base is not
// modified.
func Merge(base Config, o Override) (Config, error) {
	if err := o.Validate(); err != nil {
		return Config{}, err
	}

	out := base.Clone()
	if out.Settings == nil {
		out.Settings = Settings{}
	}

	apply(&out.Version, o.Version)
	apply(&out.PackageSource, o.PackageSource)
	apply(&out.PackageName, o.PackageName)
	apply(&out.ArchiveBaseURL, o.ArchiveBaseURL)
	apply(&out.RepoBaseURL, o.RepoBaseURL)
	apply(&out.InstallDir, o.InstallDir)
	apply(&out.ConfigDir, o.ConfigDir)
	apply(&out.ManageRepo, o.ManageRepo)
	apply(&out.ServiceName, o.ServiceName)
	apply(&out.ServiceEnsure, o.ServiceEnsure)
	apply(&out.ServiceEnable, o.ServiceEnable)
	apply(&out.User, o.User)
	apply(&out.Group, o.Group)
	apply(&out.UseDefaultSettings, o.UseDefaultSettings)
	for k, v := range o.Settings {
		out.Settings[k] = v
	}
	return out, nil
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
