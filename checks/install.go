package checks

import (
	"path"
	"strings"

	"github.com/mateothegreat/osformula"
	"github.com/mateothegreat/osformula/config"
	"github.com/stretchr/testify/assert"
)

// Installation is how and where a scenario gets OpenSearch installed.
type Installation struct {
	Source config.PackageSource
	Home   string
	// Package is the pinned package argument for package installs.
	Package string
	// URL is the release tarball for archive and download installs.
	URL string
	// Target is the file the tarball is downloaded to.
	Target string
}

// pinnedPackage returns the package argument pinned to the configured version the
// way the platform's package manager expects it.
func pinnedPackage(family osformula.Family, name, version string) string {
	if family == osformula.FamilyRedHat {
		return name + "-" + version
	}
	return name + "=" + version
}

func installPackage(ctx *osformula.TestContext) error {
	cfg := ctx.Config
	if cfg.PackageSource.IsTarball() {
		return osformula.Skipf("installing via %s", cfg.PackageSource)
	}

	inst := Installation{
		Source:  cfg.PackageSource,
		Home:    cfg.HomeDir(),
		Package: pinnedPackage(ctx.Platform.Family, cfg.PackageName, cfg.Version),
	}
	assert.Equal(ctx, config.PackageSourcePackage, inst.Source)
	assert.True(ctx, strings.HasSuffix(inst.Package, cfg.Version), "package %s is pinned to %s", inst.Package, cfg.Version)
	assert.Equal(ctx, "/usr/share/opensearch", inst.Home)

	ctx.Store.Set(StoreInstall, inst)
	return nil
}

func installArchive(ctx *osformula.TestContext) error {
	cfg := ctx.Config
	if !cfg.PackageSource.IsTarball() {
		return osformula.Skipf("installing via %s", cfg.PackageSource)
	}

	u, err := cfg.ArchiveURL()
	if err != nil {
		return err
	}
	inst := Installation{
		Source: cfg.PackageSource,
		Home:   cfg.HomeDir(),
		URL:    u,
		Target: path.Join(cfg.InstallDir, cfg.ArchiveFile()),
	}
	assert.Contains(ctx, inst.URL, "/"+cfg.Version+"/", "archive url is for version %s", cfg.Version)
	assert.True(ctx, strings.HasSuffix(inst.URL, "/"+cfg.ArchiveFile()), "archive url %s ends in %s", inst.URL, cfg.ArchiveFile())
	assert.Equal(ctx, cfg.InstallDir, path.Dir(inst.Home), "home is extracted below the install dir")
	assert.Equal(ctx, "opensearch-"+cfg.Version, path.Base(inst.Home))

	ctx.Store.Set(StoreInstall, inst)
	return nil
}

// install checks that exactly one install method applied, and that it matches
// the configured package source.
func install(ctx *osformula.TestContext) error {
	cfg := ctx.Config
	inst, err := osformula.Load[Installation](ctx.Store, StoreInstall)
	if !assert.NoError(ctx, err, "an install method applies to %s", cfg.PackageSource) {
		return nil
	}
	assert.Equal(ctx, cfg.PackageSource, inst.Source)
	assert.True(ctx, path.IsAbs(inst.Home), "home %s is absolute", inst.Home)

	switch inst.Source {
	case config.PackageSourcePackage:
		assert.Empty(ctx, inst.URL, "package installs do not fetch a tarball")
	case config.PackageSourceArchive, config.PackageSourceDownload:
		assert.Empty(ctx, inst.Package, "tarball installs do not use a package")
		assert.NotEmpty(ctx, inst.URL)
	}
	return nil
}
