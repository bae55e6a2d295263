package validate

import (
	"fmt"
	"time"
)

// ResolverConfig represents the host discovery settings for validation purposes.
type ResolverConfig struct {
	DomainSuffix string
	Nameserver   string
	Timeout      time.Duration
}

// ValidateResolver checks the DNS discovery settings.
func ValidateResolver(rc ResolverConfig) []error {
	var errs []error

	if err := ValidateDomainSuffix(rc.DomainSuffix); err != nil {
		errs = append(errs, ValidationError{
			Path:    "resolver.domain_suffix",
			Message: err.Error(),
			Hint:    "e.g. drush.in",
		})
	}
	if rc.Nameserver != "" {
		if err := ValidateHostPort(rc.Nameserver); err != nil {
			errs = append(errs, ValidationError{
				Path:    "resolver.nameserver",
				Message: err.Error(),
				Hint:    "e.g. 8.8.8.8:53",
			})
		}
	}
	if rc.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Path:    "resolver.timeout",
			Message: fmt.Sprintf("must be positive; got %s", rc.Timeout),
		})
	}

	return errs
}
