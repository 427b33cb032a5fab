package shellkit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shellkitio/shellkit/pkg/async"
	"github.com/shellkitio/shellkit/pkg/bridge"
	"github.com/shellkitio/shellkit/pkg/config"
	obsprom "github.com/shellkitio/shellkit/pkg/observability/prometheus"
)

// shutdownTimeout bounds how long Run waits for the event loop to drain.
const shutdownTimeout = 5 * time.Second

// App wires the event loop, the front-end bridge and the metrics endpoint
// into one runnable shell process.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	loop     *async.EventLoop
	registry *bridge.Registry

	bridgeSrv  *http.Server
	metricsSrv *http.Server
}

// New builds an App from configuration. logger may be nil.
func New(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	loop := async.NewEventLoop(async.LoopConfig{
		Workers:       cfg.Loop.Workers,
		QueueSize:     cfg.Loop.QueueSize,
		RetryInterval: cfg.Loop.RetryInterval(),
	})
	registry := bridge.NewRegistry()

	var recorder bridge.Recorder
	app := &App{
		cfg:      cfg,
		logger:   logger,
		loop:     loop,
		registry: registry,
	}

	if cfg.Metrics.Enabled {
		recorder = obsprom.GetMetrics()
		if err := obsprom.RegisterLoop(loop); err != nil {
			// Happens when a second App shares the process; scrapes
			// then reflect the first loop only.
			logger.Warn("loop metrics not registered", "error", err)
		}

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", obsprom.Handler())
		app.metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux}
	}

	server := bridge.NewServer(bridge.NewDispatcher(registry, loop), logger, recorder)
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Bridge.Path, server.HandleWebSocket)
	app.bridgeSrv = &http.Server{Addr: cfg.Bridge.Addr, Handler: mux}

	return app
}

// Registry returns the action registry, for handler registration before Run.
func (a *App) Registry() *bridge.Registry {
	return a.registry
}

// Loop returns the underlying event loop.
func (a *App) Loop() *async.EventLoop {
	return a.loop
}

// Run starts everything and blocks until SIGINT/SIGTERM or a server failure,
// then shuts down gracefully: listeners first, then the loop, bounded by
// shutdownTimeout.
func (a *App) Run() error {
	loopDone := make(chan error, 1)
	go func() { loopDone <- a.loop.Run(context.Background()) }()

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("bridge listening", "addr", a.cfg.Bridge.Addr, "path", a.cfg.Bridge.Path)
		if err := a.bridgeSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if a.metricsSrv != nil {
		go func() {
			a.logger.Info("metrics listening", "addr", a.cfg.Metrics.Addr)
			if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var runErr error
	select {
	case s := <-sig:
		a.logger.Info("shutting down", "signal", s.String())
	case err := <-errCh:
		a.logger.Error("server failed", "error", err)
		runErr = err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.shutdown(ctx, loopDone)

	return runErr
}

func (a *App) shutdown(ctx context.Context, loopDone <-chan error) {
	if err := a.bridgeSrv.Shutdown(ctx); err != nil {
		a.logger.Warn("bridge server shutdown", "error", err)
	}
	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown", "error", err)
		}
	}

	a.loop.Stop()
	select {
	case <-loopDone:
		a.logger.Info("event loop drained")
	case <-ctx.Done():
		a.logger.Warn("shutdown timed out waiting for event loop")
	}
}
