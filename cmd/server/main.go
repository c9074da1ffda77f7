// Package main is the entrypoint for the SlabScan API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/slabscan/internal/api"
	"github.com/kiranshivaraju/slabscan/internal/api/handler"
	mw "github.com/kiranshivaraju/slabscan/internal/api/middleware"
	"github.com/kiranshivaraju/slabscan/internal/app"
	"github.com/kiranshivaraju/slabscan/internal/cache"
	"github.com/kiranshivaraju/slabscan/internal/config"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/internal/narrative"
	"github.com/kiranshivaraju/slabscan/internal/report"
	"github.com/kiranshivaraju/slabscan/internal/scan"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, failing fast when it is invalid
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Create cache
	ca, err := newCache(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer ca.Close()

	// 3. Wire services and routes
	router, svc, err := newApp(ctx, cfg, ca)
	if err != nil {
		return err
	}
	defer svc.Close()

	// 4. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newCache connects to Redis when REDIS_URL is set and falls back to an
// in-process cache otherwise.
func newCache(ctx context.Context, cfg config.RedisConfig) (cache.Cache, error) {
	if cfg.URL == "" {
		slog.Info("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("create redis cache: %w", err)
	}
	if err := redisCache.Ping(ctx); err != nil {
		redisCache.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")
	return redisCache, nil
}

// newCamera returns the camera the scan workflow opens.
func newCamera(cfg config.ScanConfig) scan.Camera {
	return &scan.SimulatedCamera{Denied: cfg.Camera == "denied"}
}

// newApp builds the workflow service and the router serving it.
func newApp(ctx context.Context, cfg *config.Config, ca cache.Cache) (http.Handler, *app.Service, error) {
	catalog, err := i18n.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load string tables: %w", err)
	}

	provider, err := narrative.NewProvider(cfg.AI)
	if err != nil {
		return nil, nil, fmt.Errorf("create narrative provider: %w", err)
	}
	slog.Info("narrative provider initialized", "provider", provider.Name(), "model", provider.Model())

	// Export is optional; a nil uploader makes the endpoint answer 501.
	var uploader handler.Uploader
	if cfg.Export.Enabled() {
		exporter, err := report.NewExporter(ctx, cfg.Export)
		if err != nil {
			return nil, nil, fmt.Errorf("create report exporter: %w", err)
		}
		uploader = exporter
		slog.Info("report export enabled", "endpoint", cfg.Export.Endpoint, "bucket", cfg.Export.Bucket)
	}

	var pdfOpts []report.PDFOption
	if cfg.Server.PDFFont != "" {
		pdfOpts = append(pdfOpts, report.WithUTF8Font(cfg.Server.PDFFont))
	}

	session := app.NewSession(app.NewState(models.Language(cfg.Server.DefaultLanguage)))
	svc := app.NewService(session,
		newCamera(cfg.Scan),
		scan.NewScanner(cfg.Scan.GridSize, cfg.Scan.Delay, nil),
		narrative.NewService(provider, ca, catalog, cfg.AI.InferenceTimeout),
		ca,
	)

	router := api.NewRouter(api.Dependencies{
		RateLimit:   mw.NewRateLimit(ca, cfg.Server.RateLimit),
		CORSOrigins: cfg.Server.CORSOrigins,

		HealthHandler:   handler.NewHealthHandler(ca, provider.Name()),
		StateHandler:    handler.NewStateHandler(session),
		EventsHandler:   handler.NewEventsHandler(session),
		LanguageHandler: handler.NewLanguageHandler(svc, session),
		NavigateHandler: handler.NewNavigateHandler(svc),
		I18nHandler:     handler.NewI18nHandler(catalog),

		ListFilesHandler:  handler.NewListFilesHandler(session),
		UploadFileHandler: handler.NewUploadFileHandler(svc),

		CameraHandler:      handler.NewCameraHandler(svc, session),
		StartScanHandler:   handler.NewStartScanHandler(svc),
		CurrentScanHandler: handler.NewCurrentScanHandler(session),
		HeatmapHandler:     handler.NewHeatmapHandler(session),
		HeatmapPNGHandler:  handler.NewHeatmapPNGHandler(session),
		HeatmapHTMLHandler: handler.NewHeatmapHTMLHandler(session, catalog),

		StartAnalysisHandler: handler.NewStartAnalysisHandler(svc),
		JobHandler:           handler.NewJobHandler(svc),

		ReportHandler:       handler.NewReportHandler(session),
		ReportPDFHandler:    handler.NewReportPDFHandler(session, catalog, pdfOpts...),
		ReportPrintHandler:  handler.NewReportPrintHandler(session, catalog),
		ReportExportHandler: handler.NewReportExportHandler(session, catalog, uploader, pdfOpts...),
	})

	return router, svc, nil
}
