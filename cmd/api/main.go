package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"washify/internal/api"
	"washify/internal/bot"
	"washify/internal/booking"
	"washify/internal/catalog"
	"washify/internal/config"
	"washify/internal/database"
	"washify/internal/domain"
	"washify/internal/events"
	"washify/internal/export"
	"washify/internal/google"
	"washify/internal/logging"
	"washify/internal/metrics"
	"washify/internal/models"
	"washify/internal/notify"
	"washify/internal/repository"
	"washify/internal/service"
	"washify/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", cfg.Catalog.Path).Msg("load catalog")
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(&logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	go database.NewBackupService(db, cfg.Backup, logging.Component(&logger, "backup")).Start(ctx)

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	drafts := initDrafts(cfg, redisClient, &logger)
	eventBus := initEventBus(&logger)
	tgBot := initTelegram(cfg, &logger)
	owner := initNotifier(cfg, cat, tgBot, &logger)
	sheets := initGoogleSheets(ctx, cfg, cat, db, &logger)

	var sheetsWriter domain.SheetsWriter
	if sheets != nil {
		sheetsWriter = sheets
	}
	var ownerNotifier domain.OwnerNotifier
	if owner.Len() > 0 {
		ownerNotifier = owner
	}

	syncWorker := worker.NewSyncWorker(db, sheetsWriter, ownerNotifier, redisClient,
		worker.RetryPolicyFromConfig(cfg.Worker), logging.Component(&logger, "worker"))
	go syncWorker.Start(ctx)

	bookings := service.NewBookingService(db, eventBus, syncWorker, logging.Component(&logger, "bookings"))
	forms := service.NewFormService(bookings, booking.NewValidator(cat, nil), drafts, cat, logging.Component(&logger, "forms"))

	ready := func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if redisClient != nil {
			if err := repository.Ping(ctx, redisClient); err != nil {
				return err
			}
		}
		return nil
	}

	exporter := export.NewExporter(db, cat, cfg.Exports.Path)

	if tgBot != nil && cfg.Notification.Telegram.AdminBot {
		adminBot := bot.NewBot(bot.NewBotWrapper(tgBot), bookings, bot.Options{
			Catalog:    cat,
			Exporter:   exporter,
			ManagerIDs: cfg.Notification.Telegram.ManagerIDs,
			PageSize:   cfg.Listing.PageSize,
			Metrics:    bot.NewMetrics(),
		}, logging.Component(&logger, "admin-bot"))
		go adminBot.Start(ctx)
		defer adminBot.Stop()
	}

	httpServer := api.NewHTTPServer(cfg.API, api.Deps{
		Bookings: bookings,
		Forms:    forms,
		Catalog:  cat,
		Exporter: exporter,
		Ready:    ready,
		PageSize: cfg.Listing.PageSize,
	}, logging.Component(&logger, "http"))

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API, ready, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
		go grpcServer.WatchReadiness(ctx, 10*time.Second)
	}

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
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

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initDrafts prefers Redis and keeps an in-memory copy for when it is down.
func initDrafts(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) booking.DraftRepository {
	memory := repository.NewMemoryDraftRepository(cfg.Drafts.TTL)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisDraftRepository(redisClient, cfg.Drafts.KeyPrefix, cfg.Drafts.TTL)
	return repository.NewFailoverDraftRepository(primary, memory, logging.Component(logger, "drafts"))
}

func initEventBus(logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus()
	audit := logging.Component(logger, "events")
	for _, eventType := range []string{events.EventBookingCreated, events.EventBookingStatusChanged, events.EventBookingDeleted} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			var payload events.BookingEventPayload
			if err := event.Decode(&payload); err != nil {
				return err
			}
			audit.Info().
				Str("event", event.Type).
				Str("booking_id", payload.BookingID).
				Str("status", payload.Status).
				Str("previous_status", payload.PreviousStatus).
				Msg("booking event")
			return nil
		})
	}
	return bus
}

func initTelegram(cfg *config.Config, logger *zerolog.Logger) *tgbotapi.BotAPI {
	tg := cfg.Notification.Telegram
	if !tg.Enabled {
		return nil
	}
	botAPI, err := notify.NewBotAPI(tg.BotToken, tg.Debug)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without telegram")
		return nil
	}
	logger.Info().Str("username", botAPI.Self.UserName).Msg("telegram connected")
	return botAPI
}

func initNotifier(cfg *config.Config, cat *catalog.Catalog, tgBot *tgbotapi.BotAPI, logger *zerolog.Logger) *notify.Multi {
	var channels []notify.Channel

	if email := cfg.Notification.Email; email.Enabled {
		channels = append(channels, notify.Channel{
			Name:     "email",
			Notifier: notify.NewEmailNotifier(notify.NewSMTPSender(email), email.OwnerEmail, cat),
		})
	}

	if tgBot != nil {
		channels = append(channels, notify.Channel{
			Name:     "telegram",
			Notifier: notify.NewTelegramNotifier(tgBot, cfg.Notification.Telegram.OwnerChatID, cat),
		})
	}

	if len(channels) == 0 {
		logger.Warn().Msg("no owner notification channel configured")
	}
	return notify.NewMulti(logging.Component(logger, "notify"), channels...)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, db *database.DB, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID, cat)
	if err == nil {
		err = sheetsService.TestConnection(ctx)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	// Полная перезапись листа при старте, дальше только точечные задачи воркера
	if list, err := db.ListBookings(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial sheets sync: list bookings")
	} else if err := sheetsService.ReplaceBookingsSheet(ctx, list); err != nil {
		logger.Warn().Err(err).Msg("initial sheets sync failed")
	}

	go sheetsService.StartCacheRefresh(ctx, models.SheetsCacheTTL*time.Second, logging.Component(logger, "sheets"))

	logger.Info().Msg("google sheets connected")
	return sheetsService
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
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Bool("grpc", grpcServer != nil).Msg("API server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error().Err(runErr).Msg("http server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return runErr
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
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
