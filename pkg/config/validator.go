package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	customerrors "github.com/leetrack/leetrack-common/pkg/errors"
)

// Validator validates tracker configuration.
// It ensures all rules are met before any component is built from the config.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate performs validation of the configuration.
// It checks for:
// - A known backend
// - Access key and store identifier when the backend is remote
// - A positive staleness threshold, rate limit and drill window
// - Non-empty CORS origins
//
// Returns a CONFIG_INVALID error describing the first failure encountered.
func (v *Validator) Validate(cfg *Config) error {
	if cfg == nil {
		return customerrors.ErrConfigInvalid("config is nil")
	}

	if err := v.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return customerrors.ErrConfigInvalid(describe(verrs[0]))
		}
		return customerrors.ErrConfigInvalid(err.Error())
	}

	for i, origin := range cfg.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			return customerrors.ErrConfigInvalid(fmt.Sprintf("cors origin %d is empty", i))
		}
	}

	return nil
}

// describe turns a field error into a message that names the yaml key.
func describe(fe validator.FieldError) string {
	key := yamlKey(fe.StructField())

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", key, fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got %q", key, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value())
	}
}

var yamlKeys = map[string]string{
	"APIKey":      "api_key",
	"BaseID":      "base_id",
	"Backend":     "backend",
	"APIURL":      "api_url",
	"Staleness":   "staleness",
	"DrillDays":   "drill_days",
	"RateLimit":   "rate_limit",
	"SQLitePath":  "sqlite_path",
	"ListenAddr":  "listen_addr",
	"CORSOrigins": "cors_origins",
}

func yamlKey(field string) string {
	if key, ok := yamlKeys[field]; ok {
		return key
	}
	return field
}
