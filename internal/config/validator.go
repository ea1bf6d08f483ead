package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in a configuration.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig validates every profile and the current profile reference.
func ValidateConfig(config *Config) ValidationErrors {
	var errs ValidationErrors

	if config.Current != "" {
		if _, ok := config.Profiles[config.Current]; !ok {
			errs = append(errs, ValidationError{
				Path:    "current",
				Message: fmt.Sprintf("profile not found: %s", config.Current),
			})
		}
	}

	for _, name := range config.ProfileNames() {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, ValidationError{
				Path:    "profiles",
				Message: "profile name cannot be empty",
			})
			continue
		}
		errs = append(errs, ValidateProfile(name, config.Profiles[name])...)
	}

	return errs
}

// ValidateProfile validates a single profile.
func ValidateProfile(name string, p *Profile) ValidationErrors {
	var errs ValidationErrors
	path := func(field string) string {
		return fmt.Sprintf("profiles.%s.%s", name, field)
	}

	switch strings.ToLower(p.Environment) {
	case "", EnvProduction, EnvSandbox, EnvLocal:
	default:
		errs = append(errs, ValidationError{
			Path:    path("environment"),
			Message: fmt.Sprintf("invalid environment: %s (use production, sandbox or local)", p.Environment),
		})
	}

	if p.URL != "" {
		u, err := url.Parse(p.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Path:    path("url"),
				Message: fmt.Sprintf("invalid url: %s", p.URL),
			})
		}
	}

	if p.Timeout != "" {
		if d, err := time.ParseDuration(p.Timeout); err != nil || d <= 0 {
			errs = append(errs, ValidationError{
				Path:    path("timeout"),
				Message: fmt.Sprintf("invalid timeout: %s", p.Timeout),
			})
		}
	}

	for key := range p.Headers {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, ValidationError{
				Path:    path("headers"),
				Message: "header name cannot be empty",
			})
		}
	}

	return errs
}
