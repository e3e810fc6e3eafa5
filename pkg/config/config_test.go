package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const minimalConfig = `
upstream:
  address: "127.0.0.1:9000"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0", cfg.Server.WriteTimeout)
	}
	if cfg.Static.MountPath != "/" {
		t.Errorf("MountPath = %q, want /", cfg.Static.MountPath)
	}
	if cfg.Static.IndexFile != "index.html" {
		t.Errorf("IndexFile = %q, want index.html", cfg.Static.IndexFile)
	}
	if cfg.Static.DefaultCacheSeconds != 60 {
		t.Errorf("DefaultCacheSeconds = %d, want 60", cfg.Static.DefaultCacheSeconds)
	}
	if cfg.Static.ImmutableCacheSeconds != 31536000 {
		t.Errorf("ImmutableCacheSeconds = %d, want 31536000", cfg.Static.ImmutableCacheSeconds)
	}
	if cfg.Static.ManifestPollSeconds != 5 {
		t.Errorf("ManifestPollSeconds = %d, want 5", cfg.Static.ManifestPollSeconds)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true for untouched section")
	}
	if !cfg.Telemetry.Health.Enabled {
		t.Error("Health.Enabled = false, want true for untouched section")
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Telemetry.Logging)
	}
	if cfg.AccessLog.Enabled {
		t.Error("AccessLog.Enabled = true, want false by default")
	}
	if !cfg.AccessLog.SQLite.WALMode {
		t.Error("SQLite.WALMode = false, want true for untouched section")
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, `
server:
  listen_address: "0.0.0.0:8443"
  read_timeout: 10s
upstream:
  address: "backend.internal:9000"
static:
  root: /srv/www
  mount_path: /assets
  index_file: home.html
  default_cache_seconds: 120
  keepalive_seconds: 30
telemetry:
  logging:
    level: debug
    format: text
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8443" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Static.Root != "/srv/www" || cfg.Static.MountPath != "/assets" {
		t.Errorf("Static = %+v", cfg.Static)
	}
	if cfg.Static.IndexFile != "home.html" {
		t.Errorf("IndexFile = %q", cfg.Static.IndexFile)
	}
	if cfg.Static.DefaultCacheSeconds != 120 {
		t.Errorf("DefaultCacheSeconds = %d", cfg.Static.DefaultCacheSeconds)
	}
	if cfg.Static.KeepaliveSeconds != 30 {
		t.Errorf("KeepaliveSeconds = %d", cfg.Static.KeepaliveSeconds)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "missing upstream",
			mutate:    func(c *Config) { c.Upstream.Address = "" },
			wantField: "upstream.address",
		},
		{
			name:      "upstream without port",
			mutate:    func(c *Config) { c.Upstream.Address = "backend" },
			wantField: "upstream.address",
		},
		{
			name:      "bad listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "not-an-address" },
			wantField: "server.listen_address",
		},
		{
			name: "manifest without root",
			mutate: func(c *Config) {
				c.Static.Root = ""
				c.Static.ManifestPath = "/tmp/manifest.json"
			},
			wantField: "static.manifest_path",
		},
		{
			name: "mount path without slash",
			mutate: func(c *Config) {
				c.Static.Root = "/srv/www"
				c.Static.MountPath = "assets"
			},
			wantField: "static.mount_path",
		},
		{
			name: "index file with path separator",
			mutate: func(c *Config) {
				c.Static.Root = "/srv/www"
				c.Static.IndexFile = "sub/index.html"
			},
			wantField: "static.index_file",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name: "access log enabled without path",
			mutate: func(c *Config) {
				c.AccessLog.Enabled = true
				c.AccessLog.SQLite.Path = ""
			},
			wantField: "access_log.sqlite.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Upstream: UpstreamConfig{Address: "127.0.0.1:9000"}}
			ApplyDefaults(cfg)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.wantField, verr)
			}
		})
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.ListenAddress = "bad"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	verr := err.(ValidationError)
	if len(verr.Errors) < 2 {
		t.Errorf("expected at least 2 errors, got %d: %v", len(verr.Errors), verr)
	}
	if !strings.Contains(verr.Error(), "server.listen_address") {
		t.Errorf("error string missing field name: %s", verr.Error())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROSEGATE_SERVER_LISTEN_ADDRESS", "0.0.0.0:9999")
	t.Setenv("ROSEGATE_UPSTREAM_ADDRESS", "override:8000")
	t.Setenv("ROSEGATE_STATIC_DEFAULT_CACHE_SECONDS", "300")
	t.Setenv("ROSEGATE_STATIC_MANIFEST_WATCH", "true")
	t.Setenv("ROSEGATE_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(writeConfigFile(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9999" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Upstream.Address != "override:8000" {
		t.Errorf("Upstream.Address = %q", cfg.Upstream.Address)
	}
	if cfg.Static.DefaultCacheSeconds != 300 {
		t.Errorf("DefaultCacheSeconds = %d", cfg.Static.DefaultCacheSeconds)
	}
	if !cfg.Static.ManifestWatch {
		t.Error("ManifestWatch = false, want true")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Telemetry.Logging.Level)
	}
}

func TestEnvOverrideInvalidAfterOverride(t *testing.T) {
	t.Setenv("ROSEGATE_UPSTREAM_ADDRESS", "no-port-here")
	if _, err := LoadConfigWithEnvOverrides(writeConfigFile(t, minimalConfig)); err == nil {
		t.Fatal("expected validation error after bad env override")
	}
}
