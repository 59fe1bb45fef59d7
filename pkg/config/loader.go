package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "LEETRACK_"

// Loader loads and validates tracker configuration.
// It layers an optional YAML preferences file, .env files and the environment
// on top of the defaults, then validates the result.
type Loader struct {
	prefsPath string
	envFiles  []string
	validator *Validator
	logger    *slog.Logger
}

// NewLoader creates a new Loader instance.
//
// Parameters:
//   - prefsPath: Path to the YAML preferences file; empty or missing file is allowed
//   - logger: Structured logger for operational logging
//   - envFiles: .env files to load; defaults to ".env" in the working directory
func NewLoader(prefsPath string, logger *slog.Logger, envFiles ...string) *Loader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &Loader{
		prefsPath: prefsPath,
		envFiles:  envFiles,
		validator: NewValidator(),
		logger:    logger,
	}
}

// Load returns a validated Config.
// This method performs four steps:
// 1. Start from Default()
// 2. Overlay the YAML preferences file, if it exists
// 3. Load .env files (existing environment variables win) and overlay LEETRACK_* variables
// 4. Validate
//
// Returns:
//   - *Config: Valid configuration ready for use
//   - error: Descriptive error if loading or validation fails
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.LoadUnvalidated()
	if err != nil {
		return nil, err
	}

	if err := l.validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	l.logger.Info("Config loaded successfully",
		"backend", cfg.Backend,
		"preferences_path", l.prefsPath,
		"staleness", cfg.Staleness,
		"drill_days", cfg.DrillDays,
	)

	return cfg, nil
}

// LoadUnvalidated layers the same sources as Load but skips validation, so a
// caller can apply overrides (or fill in missing credentials) first.
func (l *Loader) LoadUnvalidated() (*Config, error) {
	cfg := Default()

	// Step 1: YAML preferences
	prefsLoaded, err := l.loadPreferences(cfg)
	if err != nil {
		return nil, err
	}

	// Step 2: .env files
	for _, f := range l.envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	// Step 3: Environment
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	l.logger.Debug("Config sources layered", "preferences_path", l.prefsPath, "preferences_loaded", prefsLoaded)

	return cfg, nil
}

func (l *Loader) loadPreferences(cfg *Config) (bool, error) {
	if l.prefsPath == "" {
		return false, nil
	}

	data, err := os.ReadFile(l.prefsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read preferences file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("failed to parse preferences YAML: %w", err)
	}

	return true, nil
}

// Save validates cfg and writes it to the preferences file.
// The file holds the access key, so it is created with 0600 permissions.
func (l *Loader) Save(cfg *Config) error {
	if l.prefsPath == "" {
		return errors.New("no preferences path configured")
	}

	if err := l.validator.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode preferences YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.prefsPath), 0o700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	if err := os.WriteFile(l.prefsPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}

	l.logger.Info("Preferences saved", "preferences_path", l.prefsPath, "backend", cfg.Backend)

	return nil
}

// DefaultPreferencesPath returns $XDG_CONFIG_HOME/leetrack/config.yaml or the
// platform equivalent.
func DefaultPreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "leetrack.yaml"
	}
	return filepath.Join(dir, "leetrack", "config.yaml")
}
