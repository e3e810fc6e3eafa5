package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"rose-hq/rosegate/pkg/accesslog"
	"rose-hq/rosegate/pkg/config"
	"rose-hq/rosegate/pkg/proxy"
	"rose-hq/rosegate/pkg/proxy/middleware"
	"rose-hq/rosegate/pkg/static"
	"rose-hq/rosegate/pkg/telemetry/health"
	"rose-hq/rosegate/pkg/telemetry/metrics"
)

// Server assembles the gateway: static handler, upstream forwarder, router,
// middleware chain, operational endpoints, and the background workers
// (manifest watcher, access log recorder, retention scheduler).
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger

	watcher   *static.Watcher
	recorder  *accesslog.Recorder
	store     *accesslog.SQLiteStore
	scheduler *accesslog.Scheduler
}

// New builds a server from configuration. Construction is fatal-on-error:
// an unreadable manifest or access log database is a startup failure, not
// something to limp along without.
func New(cfg *config.Config, version health.VersionInfo) (*Server, error) {
	logger := slog.Default().With("component", "server")

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics)

	var (
		manifest      *static.Manifest
		staticHandler *static.Handler
		watcher       *static.Watcher
	)
	if cfg.Static.Root != "" {
		if cfg.Static.ManifestPath != "" {
			m, err := static.LoadManifest(cfg.Static.ManifestPath)
			if err != nil {
				return nil, err
			}
			manifest = m
			watcher = static.NewWatcher(manifest, &cfg.Static, collector)
			logger.Info("manifest loaded",
				"path", cfg.Static.ManifestPath, "entries", manifest.Len())
		}
		staticHandler = static.NewHandler(&cfg.Static, manifest, collector)
	}

	var (
		store     *accesslog.SQLiteStore
		recorder  *accesslog.Recorder
		scheduler *accesslog.Scheduler
	)
	if cfg.AccessLog.Enabled {
		s, err := accesslog.NewSQLiteStore(&cfg.AccessLog.SQLite)
		if err != nil {
			return nil, err
		}
		store = s
		recorder = accesslog.NewRecorder(store, &cfg.AccessLog.Recorder)

		pruner := accesslog.NewPruner(store, cfg.AccessLog.Retention)
		scheduler, err = accesslog.NewScheduler(pruner, cfg.AccessLog.Retention.PruneSchedule)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	router := proxy.NewRouter(staticHandler, proxy.NewForwarder(&cfg.Upstream), recorder, collector)

	mux := http.NewServeMux()
	registerOperational(mux, cfg, manifest, store, collector, version)
	mux.Handle("/", router)

	chainLogger := slog.Default().With("component", "http")
	handler := middleware.Recovery(chainLogger)(
		middleware.Logging(chainLogger)(
			middleware.RequestID(
				middleware.CORS(collector)(mux))))

	httpServer := &http.Server{
		Addr:           cfg.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    time.Duration(cfg.Static.KeepaliveSeconds) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Server{
		cfg:        cfg,
		httpServer: httpServer,
		handler:    handler,
		logger:     logger,
		watcher:    watcher,
		recorder:   recorder,
		store:      store,
		scheduler:  scheduler,
	}, nil
}

// registerOperational mounts the health, version, and metrics endpoints.
// They are matched by the mux before the catch-all gateway route, so a
// static file or upstream path shadowed by them is unreachable; the paths
// are configurable for exactly that reason.
func registerOperational(mux *http.ServeMux, cfg *config.Config, manifest *static.Manifest, store *accesslog.SQLiteStore, collector *metrics.Collector, version health.VersionInfo) {
	if cfg.Telemetry.Health.Enabled {
		checker := health.NewChecker(cfg.Telemetry.Health.CheckTimeout)

		if cfg.Static.Root != "" {
			root := cfg.Static.Root
			checker.Register("static_root", func(ctx context.Context) error {
				info, err := os.Stat(root)
				if err != nil {
					return fmt.Errorf("static root: %w", err)
				}
				if !info.IsDir() {
					return fmt.Errorf("static root %q is not a directory", root)
				}
				return nil
			})
		}
		if manifest != nil {
			checker.Register("manifest", func(ctx context.Context) error {
				if _, err := os.Stat(manifest.Path()); err != nil {
					return fmt.Errorf("manifest: %w", err)
				}
				return nil
			})
		}
		upstream := cfg.Upstream.Address
		checker.Register("upstream", func(ctx context.Context) error {
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", upstream)
			if err != nil {
				return fmt.Errorf("upstream %s: %w", upstream, err)
			}
			return conn.Close()
		})
		if store != nil {
			checker.Register("access_log", store.Ping)
		}

		mux.Handle(cfg.Telemetry.Health.LivenessPath, health.LivenessHandler())
		mux.Handle(cfg.Telemetry.Health.ReadinessPath, health.ReadinessHandler(checker))
		mux.Handle(cfg.Telemetry.Health.VersionPath, health.VersionHandler(version))
	}

	if h := collector.Handler(); h != nil {
		mux.Handle(cfg.Telemetry.Metrics.Path, h)
	}
}

// Handler returns the fully assembled handler chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start launches the background workers and serves until the listener
// fails or Shutdown is called. The context bounds the manifest watcher's
// lifetime.
func (s *Server) Start(ctx context.Context) error {
	if s.watcher != nil {
		go s.watcher.Run(ctx)
	}
	if s.scheduler != nil {
		s.scheduler.Start()
	}

	s.logger.Info("server starting",
		"address", s.cfg.Server.ListenAddress,
		"upstream", s.cfg.Upstream.Address,
		"static_root", s.cfg.Static.Root,
	)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline, then
// stops the background workers and closes storage.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	err := s.httpServer.Shutdown(ctx)

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.recorder != nil {
		s.recorder.Close()
	}
	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
