package checks

import (
	"path"

	"github.com/mateothegreat/osformula"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

// RenderedConfig is the opensearch.yml a scenario produces.
type RenderedConfig struct {
	Path    string
	Content []byte
}

// renderConfig renders opensearch.yml and reads it back: every configured
// setting must be in it, and the default settings exactly when enabled.
func renderConfig(ctx *osformula.TestContext) error {
	cfg := ctx.Config

	content, err := cfg.Render()
	if err != nil {
		return err
	}
	rendered := RenderedConfig{Path: cfg.ConfigFile(), Content: content}
	assert.Equal(ctx, cfg.ConfigDir, path.Dir(rendered.Path))

	var parsed map[string]any
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return err
	}

	for _, key := range cfg.Settings.Keys() {
		assert.EqualValues(ctx, cfg.Settings[key], parsed[key], "setting %s", key)
	}
	for _, key := range cfg.DefaultSettings.Keys() {
		if _, overridden := cfg.Settings[key]; overridden {
			continue
		}
		if cfg.UseDefaultSettings {
			assert.EqualValues(ctx, cfg.DefaultSettings[key], parsed[key], "default setting %s", key)
		} else {
			assert.NotContains(ctx, parsed, key, "default setting %s is left out", key)
		}
	}
	assert.Len(ctx, parsed, len(cfg.EffectiveSettings()))

	ctx.Store.Set(StoreConfig, rendered)
	return nil
}
