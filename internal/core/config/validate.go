package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
)

// largeHistory is the capacity above which rewriting the whole collection on
// every change becomes noticeable.
const largeHistory = 500

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this also checks the config file and data directory on disk.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		fieldErrs := extractFieldErrors(err)
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil {
			if info.IsDir() {
				errs = errs.Append("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
			}
		} else if !os.IsNotExist(err) {
			errs = errs.Append("config_file", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			errs = errs.Append("data_dir", fmt.Errorf("%s is not a directory", c.DataDir))
		}
	}

	return errs.ToError()
}

// Warnings returns non-fatal issues worth surfacing to the user.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.History.Capacity > largeHistory {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "history.capacity",
			Message:  fmt.Sprintf("%d entries are rewritten on every change", c.History.Capacity),
		})
	}

	if c.Obfuscate.WrapIIFE {
		warnings = append(warnings, ValidationWarning{
			Category: "Obfuscate",
			Item:     "obfuscate.wrap_iife",
			Message:  "top-level declarations in obfuscated output are no longer global",
		})
	}

	if !c.Storage.RecoverCorrupt {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "storage.recover_corrupt",
			Message:  "a corrupted store file blocks every history change until removed",
		})
	}

	return warnings
}

func extractFieldErrors(err error) criterio.FieldErrors {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return criterio.FieldErrors{{Err: err}}
}
