package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"barterhub/internal/config"
	"barterhub/internal/events"
	handlers "barterhub/internal/handlers/shared"
	"barterhub/internal/jobs"
	"barterhub/internal/models"
	"barterhub/internal/repositories/mongodb"
	"barterhub/internal/services"
	"barterhub/pkg/cache"
	"barterhub/pkg/database"
	"barterhub/pkg/logger"
	"barterhub/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	mongo, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongo.Close(closeCtx); err != nil {
			log.WithError(err).Warn("Failed to close MongoDB connection")
		}
	}()

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(mongo.Database, log.Logrus()).Up(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	redisCache, err := cache.NewRedisCache(ctx, &cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return err
	}
	defer redisCache.Close()

	// Repositories
	barterRepo := mongodb.NewBarterRepository(mongo.Database)
	skillRepo := mongodb.NewSkillRepository(mongo.Database)
	categoryRepo := mongodb.NewCategoryRepository(mongo.Database)
	userRepo := mongodb.NewUserRepository(mongo.Database, redisCache)
	reviewRepo := mongodb.NewReviewRepository(mongo.Database)
	notificationRepo := mongodb.NewNotificationRepository(mongo.Database, redisCache)
	conversationRepo := mongodb.NewConversationRepository(mongo.Database)

	// Events
	bus := events.NewBus(events.Config{
		BufferSize:     cfg.Events.BufferSize,
		Workers:        cfg.Events.Workers,
		HandlerTimeout: cfg.Events.HandlerTimeout,
	}, log)

	// Services
	ledger := services.NewSkillLedger(skillRepo)
	statsService := services.NewStatsService(barterRepo, userRepo, log)
	ratingService := services.NewRatingService(reviewRepo, userRepo)
	barterService := services.NewBarterService(barterRepo, userRepo, ledger, statsService, bus, log)
	reviewService := services.NewReviewService(reviewRepo, barterRepo, ratingService, bus, log)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, redisCache, cfg.Redis.ChannelPrefix, log)
	conversationService := services.NewConversationService(conversationRepo, barterRepo)
	skillService := services.NewSkillService(skillRepo, categoryRepo, bus, log)
	skillCounter := services.NewSkillCounter(categoryRepo, log)

	bus.SubscribeAll("notifications", notificationService.HandleEvent)
	bus.Subscribe(models.EventBarterAccepted, "conversation_linker", conversationService.HandleBarterAccepted)
	bus.Subscribe(models.EventSkillCreated, "skill_counter", skillCounter.HandleSkillEvent)
	bus.Subscribe(models.EventSkillDeleted, "skill_counter", skillCounter.HandleSkillEvent)

	busCtx, stopBus := context.WithCancel(context.Background())
	var busDone sync.WaitGroup
	busDone.Add(1)
	go func() {
		defer busDone.Done()
		bus.Run(busCtx)
	}()

	var reconciler *jobs.Reconciler
	if cfg.Jobs.Enabled {
		reconciler = jobs.NewReconciler(barterRepo, reviewRepo, statsService, ratingService, log)
		if err := reconciler.Start(cfg.Jobs.ReconcileCron); err != nil {
			stopBus()
			return err
		}
	}

	// HTTP
	if !cfg.App.Debug || cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := routes.NewRouter(routes.RouterConfig{
		JWTSecret:          cfg.Security.JWTSecret,
		CORSAllowedOrigins: cfg.Security.CORSAllowedOrigins,
		TrustedProxies:     cfg.Security.TrustedProxies,
		RateLimitPerMinute: cfg.Security.RateLimitPerMinute,
		RateLimiter:        redisCache,
		Logger:             log,
	}, routes.Handlers{
		Barter:       handlers.NewBarterHandler(barterService, statsService),
		Review:       handlers.NewReviewHandler(reviewService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Skill:        handlers.NewSkillHandler(skillService),
		Health: handlers.NewHealthHandler(cfg.App.Version, map[string]handlers.Pinger{
			"mongodb": mongo,
			"redis":   redisCache,
		}),
	})
	if err != nil {
		if reconciler != nil {
			reconciler.Stop(ctx)
		}
		stopBus()
		busDone.Wait()
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.App.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("Server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shut down HTTP server cleanly")
	}
	if reconciler != nil {
		reconciler.Stop(shutdownCtx)
	}

	// handlers still need the database while the bus drains
	stopBus()
	busDone.Wait()

	log.Info("Server stopped")
	return nil
}
