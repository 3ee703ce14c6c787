package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ankr-events/ankr-api/api/swagger"
	"github.com/ankr-events/ankr-api/internal/handler"
	internalmiddleware "github.com/ankr-events/ankr-api/internal/middleware"
	"github.com/ankr-events/ankr-api/internal/repository"
	"github.com/ankr-events/ankr-api/internal/service"
	"github.com/ankr-events/ankr-api/pkg/cache"
	"github.com/ankr-events/ankr-api/pkg/config"
	"github.com/ankr-events/ankr-api/pkg/database"
	"github.com/ankr-events/ankr-api/pkg/export"
	"github.com/ankr-events/ankr-api/pkg/logger"
	corsmiddleware "github.com/ankr-events/ankr-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ankr-events/ankr-api/pkg/middleware/requestid"
	"github.com/ankr-events/ankr-api/pkg/storage"
)

// @title ANKR Event Calendar API
// @version 1.0.0
// @description DJ event listings, month calendars with public holidays, view preferences and year-end receipts
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	loc := cfg.Location()
	validate := validator.New()
	metrics := service.NewMetricsService()

	holidayRepo := repository.NewHolidayRepository(&http.Client{}, repository.HolidayClientConfig{
		BaseURL:        cfg.Holidays.BaseURL,
		APIKey:         cfg.Holidays.APIKey,
		Operation:      cfg.Holidays.Operation,
		RequestTimeout: cfg.Holidays.RequestTimeout,
		MaxAttempts:    cfg.Holidays.MaxAttempts,
		RetryDelay:     cfg.Holidays.RetryDelay,
	}, logr.Named("holiday_api"))
	holidays := service.NewHolidayService(holidayRepo, cfg.Holidays.BatchSize, loc, metrics, logr.Named("holidays"))

	var archive service.EventArchive
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close() //nolint:errcheck
		snapshots := repository.NewEventSnapshotRepository(db)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("prepare snapshot schema: %w", err)
		}
		archive = snapshots
	}

	firebase := repository.NewFirebaseEventRepository(&http.Client{}, repository.FirebaseConfig{
		DatabaseURL:    cfg.Events.DatabaseURL,
		Path:           cfg.Events.Path,
		AuthToken:      cfg.Events.AuthToken,
		RequestTimeout: cfg.Events.RequestTimeout,
	}, logr.Named("firebase"))
	feed := service.NewEventFeedService(firebase, archive, cfg.Events.PollInterval, metrics, logr.Named("feed"))

	var settingsRepo service.SettingsRepository
	switch cfg.Settings.Backend {
	case config.SettingsBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisRepo := repository.NewRedisSettingsRepository(client, cfg.Settings.TTL, logr.Named("settings"))
		defer redisRepo.Close() //nolint:errcheck
		settingsRepo = redisRepo
	default:
		settingsRepo = repository.NewMemorySettingsRepository()
	}
	settings := service.NewSettingsService(settingsRepo, validate, logr.Named("settings"))

	venues, err := service.LoadVenueLinks(cfg.Venues.File)
	if err != nil {
		return fmt.Errorf("load venues: %w", err)
	}
	processor := service.NewEventProcessor(loc, service.AnyIfSingleAllIfMultiple, logr.Named("processor"))
	events := service.NewEventService(feed, processor, service.NewLinkService(loc, venues), logr.Named("events"))
	calendar := service.NewCalendarService(processor, holidays, logr.Named("calendar"))

	files, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		return fmt.Errorf("prepare receipt storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)
	receipts := service.NewReceiptService(events, files, signer, validate, metrics, service.ReceiptConfig{
		APIPrefix: cfg.APIPrefix,
		FileTTL:   cfg.Receipts.SignedURLTTL,
	}, loc, logr.Named("receipts"), export.NewCSVExporter(), export.NewPDFExporter(cfg.Receipts.FontPath))

	auth := service.NewAuthService(service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		Expiry:            cfg.JWT.Expiration,
		AdminUsername:     cfg.Admin.Username,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	}, validate, logr.Named("auth"))

	prefetchCron := ""
	if cfg.Holidays.PrefetchEnabled {
		prefetchCron = cfg.Holidays.PrefetchCron
	}
	maintenance, err := service.NewMaintenanceService(holidays, receipts, feed, service.MaintenanceConfig{
		Workers:           cfg.Maintenance.Workers,
		PrefetchCron:      prefetchCron,
		CleanupCron:       cfg.Maintenance.CleanupCron,
		SnapshotRetention: cfg.Maintenance.SnapshotRetention,
		Location:          loc,
	}, logr.Named("maintenance"))
	if err != nil {
		return err
	}
	maintenance.Start(ctx)
	defer maintenance.Stop()
	if cfg.Holidays.PrefetchEnabled {
		if err := maintenance.EnqueuePrefetch(); err != nil {
			logr.Warn("initial holiday prefetch not queued", zap.Error(err))
		}
	}

	go feed.Run(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Events:   handler.NewEventHandler(events, feed, settings),
		Calendar: handler.NewCalendarHandler(events, calendar, holidays, feed, settings),
		Holidays: handler.NewHolidayHandler(holidays, loc),
		Settings: handler.NewSettingsHandler(settings),
		Receipts: handler.NewReceiptHandler(receipts),
		Auth:     handler.NewAuthHandler(auth),
		Admin:    handler.NewAdminHandler(holidays, maintenance, metrics),
		Metrics:  handler.NewMetricsHandler(metrics, feed),
	}, auth, logr.Named("audit"))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
