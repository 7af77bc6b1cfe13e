package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vladimiradmaev/health-tracker/internal/api"
	"github.com/vladimiradmaev/health-tracker/internal/bot"
	"github.com/vladimiradmaev/health-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/health-tracker/internal/bot/state"
	"github.com/vladimiradmaev/health-tracker/internal/cache"
	"github.com/vladimiradmaev/health-tracker/internal/config"
	"github.com/vladimiradmaev/health-tracker/internal/database"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
	"github.com/vladimiradmaev/health-tracker/internal/metrics"
	"github.com/vladimiradmaev/health-tracker/internal/mifit"
	"github.com/vladimiradmaev/health-tracker/internal/repository"
	"github.com/vladimiradmaev/health-tracker/internal/services"
)

const (
	cachePrefix = "healthlog:cache:"
	statePrefix = "healthlog:bot:"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	logger.Info("Starting health tracker", "addr", cfg.HTTP.Addr, "timezone", cfg.Location.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	device, err := mifit.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Warn("Device data source unavailable, continuing without it", "error", err)
		device = &mifit.Store{}
	}
	defer func() {
		if err := device.Close(context.Background()); err != nil {
			logger.Warn("Failed to disconnect device data source", "error", err)
		}
	}()

	var redisClient *redis.Client
	var responseCache cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisClient.Close()
		responseCache = cache.NewRedis(redisClient, cachePrefix)
		logger.Info("Using Redis cache", "addr", cfg.Redis.Addr)
	}

	m := metrics.New()
	store := repository.NewHealthLogRepository(db)
	adapter := mifit.NewAdapter(device, m)

	aggregateSvc := services.NewAggregateService(store, adapter, cfg.Location,
		services.WithCache(responseCache, cfg.Cache.TTL),
		services.WithMetrics(m),
	)
	healthLogSvc := services.NewHealthLogService(store, responseCache)
	statsSvc := services.NewStatsService(store)
	warningSvc := services.NewWarningService(aggregateSvc, adapter)
	sleepSvc := services.NewSleepService(adapter, cfg.Location)
	logger.Info("Services initialized successfully")

	handler := api.NewHandler(api.Services{
		Logs:      healthLogSvc,
		Aggregate: aggregateSvc,
		Stats:     statsSvc,
		Warnings:  warningSvc,
		Sleep:     sleepSvc,
	}, cfg.Paging, cfg.Location)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(handler, m, cfg.HTTP.CORSOrigins),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Token != "" {
		var stateManager state.StateManager = state.NewManager()
		if redisClient != nil {
			stateManager = state.NewRedisManager(redisClient, statePrefix, 0)
		}

		telegramBot, err := bot.NewBot(cfg.Telegram.Token, handlers.Dependencies{
			Logs:      healthLogSvc,
			Aggregate: aggregateSvc,
			Stats:     statsSvc,
			Warnings:  warningSvc,
			Location:  cfg.Location,
		}, stateManager, cfg.Telegram.AllowedChatIDs)
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}
		g.Go(func() error {
			if err := telegramBot.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN is empty, bot disabled")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Health tracker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Health tracker stopped")
}
