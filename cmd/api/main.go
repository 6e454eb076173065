package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sma-admin-gateway/internal/config"
	"github.com/noah-isme/sma-admin-gateway/internal/database"
	"github.com/noah-isme/sma-admin-gateway/internal/handler"
	"github.com/noah-isme/sma-admin-gateway/internal/middleware"
	"github.com/noah-isme/sma-admin-gateway/internal/models"
	"github.com/noah-isme/sma-admin-gateway/internal/repository"
	"github.com/noah-isme/sma-admin-gateway/internal/router"
	"github.com/noah-isme/sma-admin-gateway/internal/service"
	"github.com/noah-isme/sma-admin-gateway/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.ProfileDocument{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	backend, err := upstream.New(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Token:   cfg.UpstreamToken,
		Timeout: cfg.UpstreamTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create upstream client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	sessionStore := repository.NewSessionStore(redisClient, cfg.SessionTTL)
	profileRepo := repository.NewProfileRepository(db)

	markEntryService := service.NewMarkEntryService(backend, sessionStore, validate, logger)
	markListService := service.NewMarkListService(backend, cfg.AveragePerMax, logger)
	feeService := service.NewFeeService(backend, sessionStore, validate, logger)
	subjectService := service.NewSubjectService(backend, validate, logger)
	profileService := service.NewProfileService(profileRepo, logger)

	marksHandler := handler.NewMarksHandler(markEntryService, markListService, logger)
	feesHandler := handler.NewFeesHandler(feeService, logger)
	subjectHandler := handler.NewSubjectHandler(subjectService, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		MarksHandler:   marksHandler,
		FeesHandler:    feesHandler,
		SubjectHandler: subjectHandler,
		ProfileHandler: profileHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
