package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	configs "github.com/rukshanyomal11/farm-management-system/config"
	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/handler"
	"github.com/rukshanyomal11/farm-management-system/internal/middleware"
	"github.com/rukshanyomal11/farm-management-system/internal/repository"
	"github.com/rukshanyomal11/farm-management-system/internal/router"
	"github.com/rukshanyomal11/farm-management-system/internal/service"
	"github.com/rukshanyomal11/farm-management-system/pkg/circuit"
	"github.com/rukshanyomal11/farm-management-system/pkg/database"
	"github.com/rukshanyomal11/farm-management-system/pkg/health"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"github.com/rukshanyomal11/farm-management-system/pkg/mailer"
	"github.com/rukshanyomal11/farm-management-system/pkg/redis"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(logger.Options{
		Environment: config.App.Environment,
		LogsPath:    config.App.LogsPath,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	// Database (connect, migrate, indexes)
	db := database.InitDatabase(config)

	if err := database.Seed(db); err != nil {
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
		// Don't fail - seed data may already exist
	} else {
		logger.GetLogger().Info("Database seeded successfully")
	}

	// Redis (nil client when disabled)
	redisClient, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewVerificationCodeRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attemptRepo := repository.NewLoginAttemptRepository(db)
	resetRepo := repository.NewResetTokenRepository(db)
	farmRepo := repository.NewFarmRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)

	// Mail pipeline
	mailCtx, stopMail := context.WithCancel(context.Background())
	defer stopMail()

	var notifier mailer.Notifier = mailer.NopNotifier{}
	var mailBreaker *circuit.Breaker
	if config.SMTP.Enabled {
		templates, err := mailer.NewTemplates()
		if err != nil {
			logger.GetLogger().Fatal("Failed to parse mail templates", zap.Error(err))
		}

		mailBreaker = circuit.NewBreaker("smtp", circuit.DefaultConfig(), logger.GetLogger())
		sender := mailer.NewSMTPSender(mailer.SMTPConfig{
			Addr:     config.SMTPAddress(),
			Host:     config.SMTP.Host,
			Username: config.SMTP.Username,
			Password: config.SMTP.Password,
			Sender:   config.SMTP.Sender,
		})

		dispatcher := mailer.NewDispatcher(
			config.Mailer.Workers,
			config.Mailer.BufferSize,
			sender,
			mailBreaker,
			templates,
			emailLogRepo,
		)
		dispatcher.Start(mailCtx)
		notifier = dispatcher

		logger.GetLogger().Info("Mail dispatcher started",
			zap.Int("workers", config.Mailer.Workers),
			zap.String("relay", config.SMTPAddress()),
		)
	} else {
		logger.GetLogger().Info("Mail delivery disabled, notifications will be dropped")
	}

	// Services
	tokenService := service.NewTokenService(config.JWT)
	passwordService := service.NewPasswordService(config.Auth.BcryptCost)
	profileCache := service.NewProfileCache(redisClient.Raw(), config.Auth.ProfileCacheTTL)

	verificationService := service.NewVerificationService(db, userRepo, codeRepo, notifier, config.Auth)
	userService := service.NewUserService(db, userRepo, codeRepo, sessionRepo, attemptRepo, farmRepo,
		tokenService, passwordService, notifier, profileCache, config.Auth)
	resetService := service.NewResetService(db, userRepo, resetRepo, sessionRepo,
		passwordService, notifier, profileCache, config.Auth)

	// Background dependency monitor
	monitor := health.NewMonitor(30*time.Second, logger.GetLogger())
	monitor.Register("database", &health.DatabaseChecker{DB: db})
	monitor.Register("redis", &health.RedisChecker{Client: redisClient})
	monitor.Start()
	defer monitor.Stop()

	// Handlers and routes
	authHandler := handler.NewAuthHandler(verificationService, userService, resetService)
	profileHandler := handler.NewProfileHandler(userService)
	adminHandler := handler.NewAdminHandler(userService)
	healthHandler := handler.NewHealthHandler(db, redisClient, mailBreaker)

	jwtMiddleware := middleware.NewJWTMiddleware(tokenService)

	engine := router.NewRouter(
		authHandler,
		profileHandler,
		adminHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	server := &http.Server{
		Addr:         ":" + config.App.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().Error("Server shutdown failed", zap.Error(err))
	}

	// Let the mail workers drain their queues before exit.
	stopMail()
	if dispatcher, ok := notifier.(*mailer.Dispatcher); ok {
		dispatcher.Wait()
	}

	logger.GetLogger().Info("Server stopped")
}
