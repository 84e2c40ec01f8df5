package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventboard/config"
	_ "eventboard/docs"
	"eventboard/internal/adapters/auth"
	"eventboard/internal/adapters/email"
	"eventboard/internal/adapters/stats"
	delivery "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/repository/postgres"
	"eventboard/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Eventboard API
// @version 1.0
// @description Event publishing and participation management backend.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	compilationRepo := postgres.NewCompilationRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	statsClient := stats.NewHTTPClient(nil, cfg.StatsURL, cfg.StatsApp)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	issuer, verifier := auth.NewJWTProvider(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(12)

	enricher := services.NewEventEnricher(statsClient, requestRepo, commentRepo, logger)
	eventService := services.NewEventService(
		eventRepo, categoryRepo, locationRepo, userRepo,
		enricher, statsClient, emailService, logger,
		cfg.OwnerEventLeadTime, cfg.AdminEventLeadTime, serviceTimeout,
	)
	requestService := services.NewRequestService(requestRepo, userRepo, eventRepo, logger, serviceTimeout)
	categoryService := services.NewCategoryService(categoryRepo, eventRepo, logger, serviceTimeout)
	userService := services.NewUserService(userRepo, logger, serviceTimeout)
	compilationService := services.NewCompilationService(compilationRepo, eventRepo, enricher, logger, serviceTimeout)
	commentService := services.NewCommentService(commentRepo, eventRepo, userRepo, logger, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry, logger, serviceTimeout)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:        controllers.NewAuthController(logger, authService),
		Event:       controllers.NewEventController(logger, eventService),
		AdminEvent:  controllers.NewAdminEventController(logger, eventService),
		Request:     controllers.NewRequestController(logger, requestService),
		Category:    controllers.NewCategoryController(logger, categoryService),
		User:        controllers.NewUserController(logger, userService),
		Compilation: controllers.NewCompilationController(logger, compilationService),
		Comment:     controllers.NewCommentController(logger, commentService),
	}, verifier)

	handler := middleware.RequestID(middleware.LoggingMiddleware(logger, mux))
	handler = middleware.CORS(cfg.AllowedOrigins, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
