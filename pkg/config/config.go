package config

import (
	"strings"
	"time"

	customerrors "github.com/leetrack/leetrack-common/pkg/errors"
)

// Backend names the store that holds the problem tables.
type Backend string

const (
	// BackendAirtable is the hosted spreadsheet-style store (default).
	BackendAirtable Backend = "airtable"

	// BackendPostgres keeps the tables in PostgreSQL.
	BackendPostgres Backend = "postgres"

	// BackendSQLite keeps the tables in a local SQLite file.
	BackendSQLite Backend = "sqlite"

	// BackendMemory keeps the tables in process memory (development only).
	BackendMemory Backend = "memory"
)

// IsRemote returns true if the backend needs an access key and store identifier.
func (b Backend) IsRemote() bool {
	return b == BackendAirtable
}

// Defaults
const (
	DefaultAPIURL     = "https://api.airtable.com/v0"
	DefaultStaleness  = 5 * time.Minute
	DefaultDrillDays  = 7
	DefaultRateLimit  = 5.0
	DefaultSQLitePath = "leetrack.db"
	DefaultListenAddr = "127.0.0.1:8765"
)

// Config is the tracker configuration. Values come from defaults, an optional YAML
// preferences file, a .env file and the environment, in that order.
type Config struct {
	APIKey      string        `yaml:"api_key" env:"API_KEY" validate:"required_if=Backend airtable"`
	BaseID      string        `yaml:"base_id" env:"BASE_ID" validate:"required_if=Backend airtable"`
	Backend     Backend       `yaml:"backend" env:"BACKEND" validate:"required,oneof=airtable postgres sqlite memory"`
	APIURL      string        `yaml:"api_url" env:"API_URL" validate:"required,url"`
	Staleness   time.Duration `yaml:"staleness" env:"STALENESS" validate:"gt=0"`
	DrillDays   int           `yaml:"drill_days" env:"DRILL_DAYS" validate:"gte=1,lte=365"`
	RateLimit   float64       `yaml:"rate_limit" env:"RATE_LIMIT" validate:"gt=0"`
	SQLitePath  string        `yaml:"sqlite_path" env:"SQLITE_PATH" validate:"required_if=Backend sqlite"`
	ListenAddr  string        `yaml:"listen_addr" env:"LISTEN_ADDR" validate:"required,hostname_port"`
	CORSOrigins []string      `yaml:"cors_origins,omitempty" env:"CORS_ORIGINS" envSeparator:","`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Backend:    BackendAirtable,
		APIURL:     DefaultAPIURL,
		Staleness:  DefaultStaleness,
		DrillDays:  DefaultDrillDays,
		RateLimit:  DefaultRateLimit,
		SQLitePath: DefaultSQLitePath,
		ListenAddr: DefaultListenAddr,
	}
}

// Credentials returns the credential gate for the configured backend.
// Local backends have no remote credential and get LocalCredentials.
func (c *Config) Credentials() Credentials {
	if !c.Backend.IsRemote() {
		return LocalCredentials(c.Backend)
	}
	return Credentials{APIKey: c.APIKey, BaseID: c.BaseID}
}

// Credentials is the gate consulted before any store operation:
// both an access key and a store identifier must be present.
type Credentials struct {
	APIKey string
	BaseID string
}

// LocalCredentials returns credentials that satisfy the gate for a local backend.
func LocalCredentials(backend Backend) Credentials {
	return Credentials{APIKey: "local", BaseID: string(backend)}
}

// Check returns a CREDENTIALS_MISSING error naming the first missing field.
// It performs no I/O.
func (c Credentials) Check() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return customerrors.ErrCredentialsMissing("api key")
	}
	if strings.TrimSpace(c.BaseID) == "" {
		return customerrors.ErrCredentialsMissing("base id")
	}
	return nil
}

// Redacted returns the API key with all but the last four characters masked.
func (c Credentials) Redacted() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}
