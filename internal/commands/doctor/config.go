package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/jsob/internal/core/config"
)

// ConfigCheck validates the configuration file and reports where state lives.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{
		config:     cfg,
		configPath: configPath,
	}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	cfg := c.config
	if cfg == nil {
		result.fail("Config loaded", "configuration not loaded")
		return result
	}

	if _, err := os.Stat(c.configPath); err == nil {
		result.pass("Source", "%s", c.configPath)
	} else {
		result.pass("Source", "defaults (no config file)")
	}

	storePath := cfg.StoreFile()
	if cfg.Storage.Backend == config.BackendSQLite {
		storePath = cfg.DatabaseFile()
	}
	result.pass("Backend "+cfg.Storage.Backend, "%s", storePath)

	if err := cfg.ValidateDeep(c.configPath); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			fieldErrs = criterio.FieldErrors{{Err: err}}
		}
		for _, fe := range fieldErrs {
			label := fe.Field
			if label == "" {
				label = "validation"
			}
			result.fail(label, "%v", fe.Err)
		}
	}

	for _, w := range cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		result.warn(label, "%s", w.Message)
	}

	return result
}
