package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"trailhead/internal/api"
	"trailhead/internal/config"
	"trailhead/internal/database"
	"trailhead/internal/domain"
	"trailhead/internal/events"
	"trailhead/internal/export"
	"trailhead/internal/google"
	"trailhead/internal/logging"
	"trailhead/internal/metrics"
	"trailhead/internal/models"
	"trailhead/internal/notify"
	"trailhead/internal/render"
	"trailhead/internal/repository"
	"trailhead/internal/service"
	"trailhead/internal/storage"
	"trailhead/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const readinessInterval = 15 * time.Second

func main() {
	issueToken := flag.String("issue-token", "", "print an admin token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the token printed by -issue-token")
	requeueFailed := flag.Bool("requeue-failed", false, "move failed sheet sync tasks back to pending and exit")
	flag.Parse()

	if err := run(*issueToken, *tokenTTL, *requeueFailed); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(issueToken string, tokenTTL time.Duration, requeueFailed bool) error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if issueToken != "" {
		token, err := api.SignToken(cfg.API.Auth.JWTSecret, issueToken, cfg.API.Auth.AdminRole, tokenTTL)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	defer repository.Close(redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheetsWorker := initSheetsWorker(ctx, cfg, db, redisClient, &logger)
	if requeueFailed {
		if sheetsWorker == nil {
			return fmt.Errorf("google sheets is not configured")
		}
		n, err := sheetsWorker.RequeueFailed(ctx)
		if err != nil {
			return fmt.Errorf("requeue failed tasks: %w", err)
		}
		logger.Info().Int("tasks", n).Msg("failed sync tasks requeued")
		return nil
	}

	bus := events.NewEventBus()
	bus.OnError(func(event *events.Event, err error) {
		logger.Error().Err(err).Str("event", event.Type).Msg("event handler failed")
	})

	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}

	objectStore := initObjectStore(cfg, &logger)
	svc, err := buildServices(cfg, db, redisClient, bus, syncWorker, objectStore, &logger)
	if err != nil {
		return err
	}

	if cfg.Database.SeedFile != "" {
		if err := seedCatalog(ctx, cfg.Database.SeedFile, svc, &logger); err != nil {
			logger.Error().Err(err).Str("seed_file", cfg.Database.SeedFile).Msg("seed catalog")
			return err
		}
	}

	// Background jobs must finish before the deferred db.Close runs.
	var background sync.WaitGroup
	var notifier *notify.Notifier
	defer func() {
		stop()
		background.Wait()
		if notifier != nil {
			notifier.Wait()
		}
	}()

	// Subscribed after seeding so seed records are not announced.
	notifier = initNotifier(cfg, &logger)
	if notifier != nil {
		notifier.Subscribe(bus)
		notifier.Start(ctx)
	}

	backup := database.NewBackupService(db, cfg.Backup, objectStore, &logger)
	jobs := []func(context.Context){backup.Start}
	if sheetsWorker != nil {
		jobs = append(jobs, sheetsWorker.Start)
	}
	startBackground(ctx, &background, jobs...)

	startMetrics(ctx, cfg, &logger)

	checks := map[string]api.Checker{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return repository.Ping(ctx, redisClient) }
	}

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
		go grpcServer.WatchReadiness(ctx, checks, readinessInterval)
	}
	httpServer := api.NewHTTPServer(cfg.API, svc, checks, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

// startBackground runs every job in its own goroutine tracked by wg.
func startBackground(ctx context.Context, wg *sync.WaitGroup, jobs ...func(context.Context)) {
	for _, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job(ctx)
		}()
	}
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSheetsWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.SheetsWorker {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.CatalogSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.GoogleCredentialsFile, cfg.Google.CatalogSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, tasks will queue until it answers")
	} else {
		if err := sheetsService.EnsureHeaders(ctx); err != nil {
			logger.Warn().Err(err).Msg("write sheet headers")
		}
		if err := sheetsService.WarmUpCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("warm up sheet row cache")
		}
	}

	logger.Info().Msg("google sheets connected")
	workerLogger := logger.With().Str("component", "sheets-worker").Logger()
	return worker.NewSheetsWorker(db, sheetsService, redisClient, worker.RetryPolicy{MaxRetries: cfg.Google.SyncMaxRetries}, &workerLogger)
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) *notify.Notifier {
	if cfg.Telegram.BotToken == "" || len(cfg.Telegram.ManagerChatIDs) == 0 {
		return nil
	}
	n, err := notify.NewNotifier(cfg.Telegram, cfg.Site.BaseURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return nil
	}
	return n
}

// initObjectStore returns nil when no bucket is configured.
func initObjectStore(cfg *config.Config, logger *zerolog.Logger) domain.ObjectStorage {
	if cfg.Storage.Bucket == "" {
		return nil
	}
	store, err := storage.NewS3Store(context.Background(), cfg.Storage)
	if err != nil {
		logger.Warn().Err(err).Msg("object storage init failed, uploads disabled")
		return nil
	}
	logger.Info().Str("bucket", cfg.Storage.Bucket).Msg("object storage configured")
	return store
}

func buildServices(
	cfg *config.Config,
	db *database.DB,
	redisClient *redis.Client,
	bus *events.EventBus,
	syncWorker domain.SyncWorker,
	objectStore domain.ObjectStorage,
	logger *zerolog.Logger,
) (api.Services, error) {
	itineraries := service.NewItineraryService(db, bus, syncWorker, logger)
	destinations := service.NewDestinationService(db, bus, syncWorker, logger)

	var forms domain.FormRepository = repository.NewMemoryFormRepository(cfg.Forms.SessionTTL)
	if redisClient != nil {
		forms = repository.NewFailoverFormRepository(
			repository.NewRedisFormRepository(redisClient, cfg.Forms.SessionTTL),
			forms,
			logger,
		)
	}

	tpl, err := render.NewTemplates()
	if err != nil {
		return api.Services{}, fmt.Errorf("parse templates: %w", err)
	}

	var uploads *storage.Uploader
	if objectStore != nil {
		uploads = storage.NewUploader(objectStore, cfg.Storage, logger)
	}

	return api.Services{
		Itineraries:  itineraries,
		Destinations: destinations,
		Catalog: []*service.CatalogService{
			service.NewCatalogService(models.KindTrail, db, bus, logger),
			service.NewCatalogService(models.KindActivity, db, bus, logger),
			service.NewCatalogService(models.KindClimbing, db, bus, logger),
		},
		Reviews:   service.NewReviewService(db, bus, logger),
		Gallery:   service.NewGalleryService(db, bus, logger),
		Posts:     service.NewPostService(db, bus, logger),
		Forms:     service.NewFormService(forms, itineraries, destinations, logger),
		Uploads:   uploads,
		Pages:     render.NewPages(itineraries, destinations, cfg.Site.BaseURL, logger),
		Templates: tpl,
		Export:    export.NewExporter(itineraries, logger),
	}, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
		logger.Info().Str("grpc_addr", grpcServer.Addr()).Msg("grpc server started")
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Bool("http_enabled", cfg.API.HTTP.Enabled).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
