package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 0 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Static gateway defaults
	DefaultStaticMountPath             = "/"
	DefaultStaticIndexFile             = "index.html"
	DefaultStaticCacheSeconds          = uint64(60)
	DefaultStaticImmutableCacheSeconds = uint64(60 * 60 * 24 * 365) // 1 year
	DefaultStaticKeepaliveSeconds      = uint64(60)
	DefaultStaticManifestPollSeconds   = uint64(5)

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "rosegate"
	DefaultMetricsSubsystem = "gateway"

	// Health defaults
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthVersionPath   = "/version"
	DefaultHealthCheckTimeout  = 5 * time.Second

	// Access log defaults
	DefaultAccessLogSQLitePath        = "data/access.db"
	DefaultAccessLogMaxOpenConns      = 10
	DefaultAccessLogMaxIdleConns      = 5
	DefaultAccessLogWALMode           = true
	DefaultAccessLogBusyTimeout       = 5 * time.Second
	DefaultAccessLogAsyncBuffer       = 1000
	DefaultAccessLogWriteTimeout      = 5 * time.Second
	DefaultAccessLogRetentionDays     = 30
	DefaultAccessLogRetentionSchedule = "0 3 * * *"
)

// DefaultRequestDurationBuckets are the histogram buckets for request
// duration in seconds, sized for local file serving and single-hop proxying
// rather than slow upstream APIs.
var DefaultRequestDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0}

// ApplyDefaults fills in default values for any zero-valued configuration
// fields. It is called by LoadConfig after parsing and can also be used on a
// hand-constructed Config in tests.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Static defaults
	if cfg.Static.MountPath == "" {
		cfg.Static.MountPath = DefaultStaticMountPath
	}
	if cfg.Static.IndexFile == "" {
		cfg.Static.IndexFile = DefaultStaticIndexFile
	}
	if cfg.Static.DefaultCacheSeconds == 0 {
		cfg.Static.DefaultCacheSeconds = DefaultStaticCacheSeconds
	}
	if cfg.Static.ImmutableCacheSeconds == 0 {
		cfg.Static.ImmutableCacheSeconds = DefaultStaticImmutableCacheSeconds
	}
	if cfg.Static.KeepaliveSeconds == 0 {
		cfg.Static.KeepaliveSeconds = DefaultStaticKeepaliveSeconds
	}
	if cfg.Static.ManifestPollSeconds == 0 {
		cfg.Static.ManifestPollSeconds = DefaultStaticManifestPollSeconds
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults. A fully zero-valued section means the user did not
	// configure metrics at all, so enable them.
	if !cfg.Telemetry.Metrics.Enabled {
		m := &cfg.Telemetry.Metrics
		if m.Path == "" && m.Namespace == "" && m.Subsystem == "" && len(m.RequestDurationBuckets) == 0 {
			m.Enabled = DefaultMetricsEnabled
		}
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets
	}

	// Health defaults, with the same zero-section heuristic as metrics.
	if !cfg.Telemetry.Health.Enabled {
		h := &cfg.Telemetry.Health
		if h.LivenessPath == "" && h.ReadinessPath == "" && h.VersionPath == "" && h.CheckTimeout == 0 {
			h.Enabled = DefaultHealthEnabled
		}
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if cfg.Telemetry.Health.VersionPath == "" {
		cfg.Telemetry.Health.VersionPath = DefaultHealthVersionPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}

	// Access log defaults. WAL mode follows the zero-section heuristic: an
	// untouched sqlite section gets WAL, an explicit wal_mode: false is kept.
	if !cfg.AccessLog.SQLite.WALMode {
		s := &cfg.AccessLog.SQLite
		if s.Path == "" && s.MaxOpenConns == 0 && s.MaxIdleConns == 0 && s.BusyTimeout == 0 {
			s.WALMode = DefaultAccessLogWALMode
		}
	}
	if cfg.AccessLog.SQLite.Path == "" {
		cfg.AccessLog.SQLite.Path = DefaultAccessLogSQLitePath
	}
	if cfg.AccessLog.SQLite.MaxOpenConns == 0 {
		cfg.AccessLog.SQLite.MaxOpenConns = DefaultAccessLogMaxOpenConns
	}
	if cfg.AccessLog.SQLite.MaxIdleConns == 0 {
		cfg.AccessLog.SQLite.MaxIdleConns = DefaultAccessLogMaxIdleConns
	}
	if cfg.AccessLog.SQLite.BusyTimeout == 0 {
		cfg.AccessLog.SQLite.BusyTimeout = DefaultAccessLogBusyTimeout
	}
	if cfg.AccessLog.Recorder.AsyncBuffer == 0 {
		cfg.AccessLog.Recorder.AsyncBuffer = DefaultAccessLogAsyncBuffer
	}
	if cfg.AccessLog.Recorder.WriteTimeout == 0 {
		cfg.AccessLog.Recorder.WriteTimeout = DefaultAccessLogWriteTimeout
	}
	if cfg.AccessLog.Retention.Days == 0 {
		cfg.AccessLog.Retention.Days = DefaultAccessLogRetentionDays
	}
	if cfg.AccessLog.Retention.PruneSchedule == "" {
		cfg.AccessLog.Retention.PruneSchedule = DefaultAccessLogRetentionSchedule
	}
}
