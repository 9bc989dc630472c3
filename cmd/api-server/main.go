package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logger"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/notification"
	"yamdb/internal/throttle"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// 2. Confirmation code throttle, optional
	var limiter service.Throttle
	if cfg.RedisURL != "" {
		client, err := throttle.Connect(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer client.Close()
		limiter = throttle.NewRedisLimiter(client, cfg.CodeRequestsPerWindow, cfg.CodeRequestWindow)
		logger.Info("Confirmation code throttle enabled")
	}

	// 3. Mail
	var mailer notification.Sender
	if cfg.SMTPHost != "" {
		mailer = notification.NewSMTPSender(notification.SMTPConfig{
			Host:          cfg.SMTPHost,
			Port:          cfg.SMTPPort,
			Username:      cfg.SMTPUsername,
			Password:      cfg.SMTPPassword,
			From:          cfg.MailFrom,
			RatePerSecond: cfg.MailRatePerSecond,
		}, logger)
	} else {
		logger.Warn("SMTP_HOST is not set, confirmation codes are written to the log")
		mailer = notification.NewConsoleSender(cfg.MailFrom, logger)
	}

	// 4. Repositories and services
	router, err := handler.SetupRouter(buildServices(db, mailer, limiter, cfg, logger), handler.RouterConfig{
		PageSize:       cfg.PageSize,
		TrustedProxies: cfg.TrustedProxies,
		Health: func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		},
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up router")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Addr()).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
		logger.Info("Server stopped gracefully")
	case err := <-errChan:
		logger.WithError(err).Fatal("Server error")
	}
}

func buildServices(db *gorm.DB, mailer notification.Sender, limiter service.Throttle, cfg *config.Config, logger *logrus.Logger) handler.Services {
	users := repository.NewUserRepository(db)
	titles := repository.NewTitleRepository(db)
	categories := repository.NewCategoryRepository(db)
	genres := repository.NewGenreRepository(db)
	reviews := repository.NewReviewRepository(db)

	return handler.Services{
		Auth:       service.NewAuthService(users, repository.NewRefreshTokenRepository(db), mailer, limiter, cfg, logger),
		Categories: service.NewCategoryService(categories),
		Genres:     service.NewGenreService(genres),
		Titles:     service.NewTitleService(titles, categories, genres),
		Reviews:    service.NewReviewService(reviews, titles),
		Comments:   service.NewCommentService(repository.NewCommentRepository(db), reviews),
		Users:      service.NewUserService(users),
	}
}
