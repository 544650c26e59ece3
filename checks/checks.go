// Package checks holds the shared check groups every scenario is run
// through. Each group looks at the merged configuration of a scenario on one
// platform, asserts what it implies, and publishes what later groups rely on
// to the run store.
package checks

import (
	"github.com/mateothegreat/osformula"
	"go.uber.org/multierr"
)

const (
	Config           = "config"
	InstallArchive   = "install_archive"
	InstallPackage   = "install_package"
	Install          = "install"
	RepositoryDebian = "repository_debian"
	RepositoryRedHat = "repository_redhat"
	Repository       = "repository"
	Service          = "service"
)

// Store keys.
const (
	StoreRepository = "repository"
	StoreInstall    = "install"
	StoreConfig     = "config"
	StoreService    = "service"
)

var groups = []struct {
	id    string
	check osformula.Check
}{
	{RepositoryDebian, repositoryDebian},
	{RepositoryRedHat, repositoryRedHat},
	{Repository, repository},
	{InstallPackage, installPackage},
	{InstallArchive, installArchive},
	{Install, install},
	{Config, renderConfig},
	{Service, service},
}

var order = [][]string{
	{RepositoryDebian, Repository},
	{RepositoryRedHat, Repository},
	{Repository, InstallPackage},
	{InstallPackage, Install},
	{InstallArchive, Install},
	{Install, Config},
	{Config, Service},
}

// Register adds every shared check group to s, ordered so that repositories
// come before installs, installs before the configuration and the
// configuration before the service.
func Register(s *osformula.Suite) error {
	var err error
	for _, g := range groups {
		err = multierr.Append(err, s.AddCheck(g.id, g.check))
	}
	if err != nil {
		return err
	}
	for _, edge := range order {
		if err := s.AddEdge(edge[0], edge[1]); err != nil {
			return err
		}
	}
	return nil
}

// NewSuite returns a suite with every shared check group registered.
func NewSuite(opts ...osformula.Option) (*osformula.Suite, error) {
	s := osformula.NewSuite(opts...)
	if err := Register(s); err != nil {
		return nil, err
	}
	return s, nil
}
