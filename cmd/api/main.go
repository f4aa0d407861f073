package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/manan-api/internal/config"
	"github.com/noah-isme/manan-api/internal/database"
	"github.com/noah-isme/manan-api/internal/handler"
	"github.com/noah-isme/manan-api/internal/middleware"
	"github.com/noah-isme/manan-api/internal/models"
	"github.com/noah-isme/manan-api/internal/observability"
	"github.com/noah-isme/manan-api/internal/repository"
	"github.com/noah-isme/manan-api/internal/router"
	"github.com/noah-isme/manan-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("app", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, caching and redis dispatch disabled")
		redisClient = nil
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, broker dispatch disabled")
		natsConn = nil
	}

	observability.RegisterMetrics()
	validate := validator.New(validator.WithRequiredStructEnabled())

	doubtRepo := repository.NewDoubtRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, models.RiskSettings{
		ID:                  models.RiskSettingsID,
		AttendanceThreshold: cfg.DefaultAttendanceThreshold,
		CGPAThreshold:       cfg.DefaultCGPAThreshold,
	})

	activityService := service.NewActivityService(activityRepo, logger)
	settingsService := service.NewSettingsService(settingsRepo, redisClient, cfg.SettingsCacheTTL, validate, activityService, logger)
	statsService := service.NewStatsService(courseRepo, doubtRepo, redisClient, cfg.StatsCacheTTL, logger)
	rosterService := service.NewRosterService(studentRepo, courseRepo, settingsService, validate, logger)
	courseService := service.NewCourseService(courseRepo, studentRepo, statsService, activityService, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, studentRepo, settingsService, activityService, service.NotificationPublisher{
		Redis:       redisClient,
		NATS:        natsConn,
		ChannelBase: cfg.EventsChannelBase,
	}, validate, logger)
	doubtService := service.NewDoubtService(doubtRepo, courseRepo, statsService, notificationService, activityService, validate, logger)

	probes := []handler.HealthProbe{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DoubtHandler:        handler.NewDoubtHandler(doubtService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		FacultyHandler:      handler.NewFacultyHandler(statsService, rosterService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, logger),
		SettingsHandler:     handler.NewSettingsHandler(settingsService, logger),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		HealthProbes:        probes,
		MetricsHandler:      observability.MetricsHandler(),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		Maintenance:         middleware.Maintenance(settingsService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, redisClient, natsConn, logger)
}

func waitForShutdown(app *fiber.App, redisClient *redis.Client, natsConn *nats.Conn, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("nats drain failed")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info().Msg("server stopped")
}
