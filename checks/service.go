package checks

import (
	"path"

	"github.com/mateothegreat/osformula"
	"github.com/mateothegreat/osformula/config"
	"github.com/stretchr/testify/assert"
)

// ServiceDefinition is the OpenSearch service a scenario manages.
type ServiceDefinition struct {
	Name   string
	Ensure config.ServiceEnsure
	Enable bool
	// Exec is the binary the service starts.
	Exec string
	// Subscribe is the file whose changes restart the service.
	Subscribe string
}

func service(ctx *osformula.TestContext) error {
	cfg := ctx.Config

	rendered, err := osformula.Load[RenderedConfig](ctx.Store, StoreConfig)
	if !assert.NoError(ctx, err, "the service needs a rendered config") {
		return nil
	}
	inst, err := osformula.Load[Installation](ctx.Store, StoreInstall)
	if !assert.NoError(ctx, err, "the service needs an installation") {
		return nil
	}

	svc := ServiceDefinition{
		Name:      cfg.ServiceName,
		Ensure:    cfg.ServiceEnsure,
		Enable:    cfg.ServiceEnable,
		Exec:      path.Join(inst.Home, "bin", "opensearch"),
		Subscribe: rendered.Path,
	}
	assert.NotEmpty(ctx, svc.Name)
	assert.Contains(ctx, []config.ServiceEnsure{config.ServiceRunning, config.ServiceStopped}, svc.Ensure)
	assert.Equal(ctx, cfg.ConfigFile(), svc.Subscribe, "service restarts on config changes")
	assert.Equal(ctx, cfg.HomeDir(), path.Dir(path.Dir(svc.Exec)))

	ctx.Store.Set(StoreService, svc)
	return nil
}
