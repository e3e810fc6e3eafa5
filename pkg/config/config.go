package config

import "time"

// Config is the root configuration structure for Rosegate.
// It contains all configuration sections for the HTTP server, the single
// upstream backend, the static asset gateway, telemetry, and the access log.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Upstream contains configuration for the single backend that requests
	// are forwarded to when the static gateway does not handle them.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Static contains configuration for the static asset gateway.
	Static StaticConfig `yaml:"static"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// AccessLog contains configuration for persistent access records.
	AccessLog AccessLogConfig `yaml:"access_log"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero or negative value means no timeout.
	// Default: 0 (disabled; static bodies are streamed and large files
	// must not be cut off by a fixed write deadline)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// If requests are still in-flight after this timeout, the server will
	// force shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// UpstreamConfig contains configuration for the backend being fronted.
// There is exactly one upstream: no load balancing, health checking, or
// retry logic exists on the forwarding leg.
type UpstreamConfig struct {
	// Address is the backend address in "host:port" form. The outbound
	// Host header is rewritten to the host portion (port stripped) and the
	// upstream leg always speaks plain HTTP.
	// Required.
	Address string `yaml:"address"`
}

// StaticConfig contains configuration for the static asset gateway.
// Static serving is active when Root is set; with an empty Root every
// request is forwarded to the upstream.
type StaticConfig struct {
	// Root is the filesystem directory that assets are served from. All
	// resolved paths are joined under this root; requests can never escape
	// it. Leave empty to disable static serving.
	Root string `yaml:"root"`

	// MountPath is the URI prefix the asset tree is mounted at. Normalized
	// to have a leading "/" and no trailing "/" unless it is the root.
	// Default: "/"
	MountPath string `yaml:"mount_path"`

	// IndexFile is the filename substituted for directory-like requests
	// (empty remainder or trailing "/").
	// Default: "index.html"
	IndexFile string `yaml:"index_file"`

	// ManifestPath is the optional path to a JSON manifest mapping logical
	// asset names to content-hashed physical filenames. When set, the
	// manifest must parse at startup.
	ManifestPath string `yaml:"manifest_path"`

	// DefaultCacheSeconds is the max-age used for assets served under their
	// literal name.
	// Default: 60
	DefaultCacheSeconds uint64 `yaml:"default_cache_seconds"`

	// ImmutableCacheSeconds is the max-age used for manifest-substituted
	// (content-hashed) assets, served with the immutable directive.
	// Default: 31536000 (1 year)
	ImmutableCacheSeconds uint64 `yaml:"immutable_cache_seconds"`

	// KeepaliveSeconds feeds the server's idle keepalive duration for
	// connections that have served a static asset. Per-connection keepalive
	// is owned by the HTTP server in Go, so this maps to
	// http.Server.IdleTimeout.
	// Default: 60
	KeepaliveSeconds uint64 `yaml:"keepalive_seconds"`

	// ManifestPollSeconds is the interval between manifest freshness checks.
	// Values below 1 are clamped to 1.
	// Default: 5
	ManifestPollSeconds uint64 `yaml:"manifest_poll_seconds"`

	// ManifestWatch additionally watches the manifest file with fsnotify so
	// changes are picked up without waiting for the next poll tick. The
	// mtime guard makes the two triggers idempotent.
	// Default: false
	ManifestWatch bool `yaml:"manifest_watch"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health check endpoint configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "rosegate"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "gateway"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration
	// (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// AccessLogConfig contains configuration for persistent access records.
type AccessLogConfig struct {
	// Enabled controls whether access records are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/access.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains access record recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer. Records
	// are dropped (and counted) when the buffer is full so request handling
	// never blocks on storage.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain access records. Records older
	// than this are eligible for deletion. 0 means keep records forever.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep. 0 means
	// unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}
