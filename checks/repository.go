package checks

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mateothegreat/osformula"
	"github.com/stretchr/testify/assert"
)

const gpgKeyPath = "publickeys/opensearch.pgp"

// RepositoryDefinition is the package repository a scenario manages.
type RepositoryDefinition struct {
	Family osformula.Family
	ID     string
	URL    string
	KeyURL string
	// Source is the apt source line or the yum repo file.
	Source string
}

func repositoryApplies(ctx *osformula.TestContext, family osformula.Family) error {
	cfg := ctx.Config
	switch {
	case ctx.Platform.Family != family:
		return osformula.Skipf("not a %s platform", family)
	case cfg.PackageSource.IsTarball():
		return osformula.Skipf("installing via %s", cfg.PackageSource)
	case !cfg.ManageRepo:
		return osformula.Skipf("repository not managed")
	}
	return nil
}

func keyURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/" + gpgKeyPath}).String(), nil
}

func repositoryDebian(ctx *osformula.TestContext) error {
	if err := repositoryApplies(ctx, osformula.FamilyDebian); err != nil {
		return err
	}
	cfg := ctx.Config

	series, err := cfg.RepoVersion()
	if err != nil {
		return err
	}
	u, err := cfg.RepoURL("apt")
	if err != nil {
		return err
	}
	key, err := keyURL(cfg.RepoBaseURL)
	if err != nil {
		return err
	}

	repo := RepositoryDefinition{
		Family: osformula.FamilyDebian,
		ID:     "opensearch-" + series,
		URL:    u,
		KeyURL: key,
		Source: fmt.Sprintf("deb %s stable main\n", u),
	}
	assert.Contains(ctx, repo.URL, "/"+series+"/", "repository follows the %s series", series)
	assert.True(ctx, strings.HasPrefix(repo.Source, "deb "+cfg.RepoBaseURL), "apt source points at %s", cfg.RepoBaseURL)

	ctx.Store.Set(StoreRepository, repo)
	return nil
}

func repositoryRedHat(ctx *osformula.TestContext) error {
	if err := repositoryApplies(ctx, osformula.FamilyRedHat); err != nil {
		return err
	}
	cfg := ctx.Config

	series, err := cfg.RepoVersion()
	if err != nil {
		return err
	}
	u, err := cfg.RepoURL("yum")
	if err != nil {
		return err
	}
	key, err := keyURL(cfg.RepoBaseURL)
	if err != nil {
		return err
	}

	id := "opensearch-" + series
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", id)
	fmt.Fprintf(&b, "name=OpenSearch %s\n", series)
	fmt.Fprintf(&b, "baseurl=%s\n", u)
	b.WriteString("gpgcheck=1\n")
	fmt.Fprintf(&b, "gpgkey=%s\n", key)
	b.WriteString("enabled=1\n")

	repo := RepositoryDefinition{
		Family: osformula.FamilyRedHat,
		ID:     id,
		URL:    u,
		KeyURL: key,
		Source: b.String(),
	}
	assert.Contains(ctx, repo.URL, "/"+series+"/", "repository follows the %s series", series)
	assert.Contains(ctx, repo.Source, "baseurl="+cfg.RepoBaseURL)

	ctx.Store.Set(StoreRepository, repo)
	return nil
}

// repository checks that exactly the repository of the platform family was
// defined, and none at all when no repository is used.
func repository(ctx *osformula.TestContext) error {
	cfg := ctx.Config
	if cfg.PackageSource.IsTarball() || !cfg.ManageRepo {
		_, err := ctx.Store.Get(StoreRepository)
		assert.Error(ctx, err, "no repository is defined without a managed package install")
		return osformula.Skipf("no repository used")
	}

	repo, err := osformula.Load[RepositoryDefinition](ctx.Store, StoreRepository)
	if !assert.NoError(ctx, err, "a repository is defined for %s", ctx.Platform) {
		return nil
	}
	assert.Equal(ctx, ctx.Platform.Family, repo.Family)
	assert.NotEmpty(ctx, repo.KeyURL)
	return nil
}
