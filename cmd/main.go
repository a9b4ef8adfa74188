package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/pitwall/internal/adapters/http/api"
	"github.com/okian/pitwall/internal/adapters/http/feed"
	"github.com/okian/pitwall/internal/adapters/http/site"
	"github.com/okian/pitwall/internal/adapters/http/swagger"
	"github.com/okian/pitwall/internal/adapters/llm"
	service "github.com/okian/pitwall/internal/app"
	"github.com/okian/pitwall/internal/config"
	"github.com/okian/pitwall/internal/domain/backend"
	"github.com/okian/pitwall/internal/domain/pedagogy"
	"github.com/okian/pitwall/internal/domain/speech"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	// POST /session/stop waits for the debrief.
	writeTimeout = 90 * time.Second

	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	l := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	base, err := loadPedagogy(cfg)
	if err != nil {
		l.Error(ctx, "failed to load pedagogy", logger.String("path", cfg.PedagogyFile), logger.Error(err))
		return
	}

	hub := feed.NewHub(feed.WithLogger(l.Named("feed")))
	go hub.Run(ctx)

	svc := newService(ctx, cfg, base, hub, l)
	hub.OnVoices(svc.UpdateVoices)

	if err := svc.Start(ctx); err != nil {
		l.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, hub),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	l.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	l.Info(ctx, "server stopped")
}

func loadPedagogy(cfg *config.Config) (*pedagogy.Base, error) {
	if cfg.PedagogyFile == "" {
		return pedagogy.Default(), nil
	}
	return pedagogy.LoadFile(cfg.PedagogyFile)
}

// newBackend returns the Gemini client, or nil when the mock should be used.
func newBackend(ctx context.Context, cfg *config.Config, l logger.Logger) backend.Backend {
	if cfg.GeminiAPIKey == "" {
		l.Info(ctx, "no Gemini credential; coaching runs on the mock backend")
		return nil
	}
	opts := []llm.Option{llm.WithLogger(l)}
	if cfg.GeminiBaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.GeminiBaseURL))
	}
	g, err := llm.New(ctx, cfg.GeminiAPIKey, opts...)
	if err != nil {
		l.Warn(ctx, "gemini client unavailable; using mock backend", logger.Error(err))
		return nil
	}
	return g
}

func newService(ctx context.Context, cfg *config.Config, base *pedagogy.Base, hub *feed.Hub, l logger.Logger) *service.Service {
	opts := []service.Option{
		service.WithConfig(cfg),
		service.WithPedagogy(base),
		service.WithSpeaker(speech.Multi{speech.NewLogSpeaker(l.Named("speech")), feed.NewHubSpeaker(hub)}),
		service.WithBroadcaster(hub),
		service.WithLogger(l.Named("session")),
	}
	if b := newBackend(ctx, cfg, l.Named("llm")); b != nil {
		opts = append(opts, service.WithBackend(b))
	}
	return service.New(opts...)
}

func newMux(ctx context.Context, svc *service.Service, hub *feed.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc, hub).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateAdvisoryQueueLength(queueLen)
	}
}
