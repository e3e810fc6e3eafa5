package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention ROSEGATE_SECTION_FIELD (e.g., ROSEGATE_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format ROSEGATE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("ROSEGATE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("ROSEGATE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("ROSEGATE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("ROSEGATE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("ROSEGATE_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}

	// Upstream overrides
	if val := os.Getenv("ROSEGATE_UPSTREAM_ADDRESS"); val != "" {
		cfg.Upstream.Address = val
	}

	// Static overrides
	if val := os.Getenv("ROSEGATE_STATIC_ROOT"); val != "" {
		cfg.Static.Root = val
	}
	if val := os.Getenv("ROSEGATE_STATIC_MOUNT_PATH"); val != "" {
		cfg.Static.MountPath = val
	}
	if val := os.Getenv("ROSEGATE_STATIC_INDEX_FILE"); val != "" {
		cfg.Static.IndexFile = val
	}
	if val := os.Getenv("ROSEGATE_STATIC_MANIFEST_PATH"); val != "" {
		cfg.Static.ManifestPath = val
	}
	if val := os.Getenv("ROSEGATE_STATIC_DEFAULT_CACHE_SECONDS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			cfg.Static.DefaultCacheSeconds = i
		}
	}
	if val := os.Getenv("ROSEGATE_STATIC_IMMUTABLE_CACHE_SECONDS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			cfg.Static.ImmutableCacheSeconds = i
		}
	}
	if val := os.Getenv("ROSEGATE_STATIC_KEEPALIVE_SECONDS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			cfg.Static.KeepaliveSeconds = i
		}
	}
	if val := os.Getenv("ROSEGATE_STATIC_MANIFEST_POLL_SECONDS"); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			cfg.Static.ManifestPollSeconds = i
		}
	}
	if val := os.Getenv("ROSEGATE_STATIC_MANIFEST_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Static.ManifestWatch = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("ROSEGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("ROSEGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("ROSEGATE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("ROSEGATE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}

	// Access log overrides
	if val := os.Getenv("ROSEGATE_ACCESS_LOG_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.AccessLog.Enabled = b
		}
	}
	if val := os.Getenv("ROSEGATE_ACCESS_LOG_SQLITE_PATH"); val != "" {
		cfg.AccessLog.SQLite.Path = val
	}
	if val := os.Getenv("ROSEGATE_ACCESS_LOG_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.AccessLog.Retention.Days = i
		}
	}
}
