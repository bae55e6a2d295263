package config

import (
	"fmt"

	"github.com/DeBrosOfficial/sitelogs/pkg/config/validate"
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// ValidationError represents a single validation error with context.
// This is exported from the validate subpackage for backward compatibility.
type ValidationError = validate.ValidationError

// Validate performs comprehensive validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	if c.LogRoot == "" {
		errs = append(errs, ValidationError{
			Path:    "log_root",
			Message: "must not be empty",
			Hint:    "run `sitelogs config set log-root <dir>`",
		})
	} else if err := validate.ValidateDataDir(c.LogRoot); err != nil {
		errs = append(errs, ValidationError{
			Path:    "log_root",
			Message: err.Error(),
		})
	}

	errs = append(errs, validate.ValidateResolver(validate.ResolverConfig{
		DomainSuffix: c.Resolver.DomainSuffix,
		Nameserver:   c.Resolver.Nameserver,
		Timeout:      c.Resolver.Timeout,
	})...)
	errs = append(errs, validate.ValidateSync(validate.SyncConfig{
		Workers:   c.Sync.Workers,
		Retries:   c.Sync.Retries,
		Backoff:   c.Sync.Backoff,
		Timeout:   c.Sync.Timeout,
		SSHPort:   c.Sync.SSHPort,
		RsyncPath: c.Sync.RsyncPath,
	})...)
	errs = append(errs, validate.ValidateLogging(validate.LoggingConfig{
		Level:      c.Logging.Level,
		OutputFile: c.Logging.OutputFile,
	})...)
	errs = append(errs, c.validateSites()...)

	return errs
}

func (c *Config) validateSites() []error {
	var errs []error
	for name, id := range c.Sites {
		path := fmt.Sprintf("sites.%s", name)
		if !logs.ValidIdentifier(name) {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: "invalid site name",
				Hint:    "letters, digits, '.', '_' and '-' only",
			})
		}
		if id == "" {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: "site ID must not be empty",
			})
		}
	}
	return errs
}

// SiteID maps a site name to its platform site ID. Names without a mapping
// are assumed to already be IDs.
func (c *Config) SiteID(site string) string {
	if id, ok := c.Sites[site]; ok && id != "" {
		return id
	}
	return site
}
