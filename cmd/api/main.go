package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/booking-api/internal/calendar"
	"github.com/jwalitptl/booking-api/internal/config"
	appointmentHandler "github.com/jwalitptl/booking-api/internal/handler/appointment"
	availabilityHandler "github.com/jwalitptl/booking-api/internal/handler/availability"
	fileHandler "github.com/jwalitptl/booking-api/internal/handler/file"
	"github.com/jwalitptl/booking-api/internal/handler/health"
	notificationHandler "github.com/jwalitptl/booking-api/internal/handler/notification"
	providerHandler "github.com/jwalitptl/booking-api/internal/handler/provider"
	scheduleHandler "github.com/jwalitptl/booking-api/internal/handler/schedule"
	sessionHandler "github.com/jwalitptl/booking-api/internal/handler/session"
	userHandler "github.com/jwalitptl/booking-api/internal/handler/user"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	appointmentService "github.com/jwalitptl/booking-api/internal/service/appointment"
	availabilityService "github.com/jwalitptl/booking-api/internal/service/availability"
	fileService "github.com/jwalitptl/booking-api/internal/service/file"
	notificationService "github.com/jwalitptl/booking-api/internal/service/notification"
	providerService "github.com/jwalitptl/booking-api/internal/service/provider"
	scheduleService "github.com/jwalitptl/booking-api/internal/service/schedule"
	sessionService "github.com/jwalitptl/booking-api/internal/service/session"
	userService "github.com/jwalitptl/booking-api/internal/service/user"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/clock"
	"github.com/jwalitptl/booking-api/pkg/logger"
	redisq "github.com/jwalitptl/booking-api/pkg/messaging/redis"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

const providerCacheTTL = 10 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Log.Console,
	})

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal(err, "Invalid scheduling timezone")
	}
	cal, err := calendar.New(cfg.Scheduling.Slots, loc)
	if err != nil {
		log.Fatal(err, "Invalid slot template")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db.DB); err != nil {
			log.Fatal(err, "Failed to run migrations")
		}
	}

	redisClient, err := redisq.NewClient(ctx, redisq.Config{
		URL:          cfg.Redis.URL,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal(err, "Failed to connect to Redis")
	}
	defer redisClient.Close()
	queue := redisq.NewQueue(redisClient, cfg.Queue.Name, log.Zerolog())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("booking", reg)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	fileRepo := postgres.NewFileRepository(db)

	// Services
	clk := clock.System()
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	jwt := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	notificationSvc := notificationService.NewService(notificationRepo, userRepo)
	providerSvc := providerService.NewService(userRepo, providerCacheTTL, cfg.Server.BaseURL)
	userSvc := userService.NewService(userRepo, fileRepo, hasher, providerSvc)
	sessionSvc := sessionService.NewService(userRepo, hasher, jwt)
	availabilitySvc := availabilityService.NewService(appointmentRepo, cal, clk)
	scheduleSvc := scheduleService.NewService(appointmentRepo, userRepo, loc, cfg.Server.BaseURL)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		userRepo,
		notificationSvc,
		queue,
		clk,
		appointmentService.Config{
			Location:       loc,
			PageSize:       cfg.Scheduling.PageSize,
			Policy:         appointmentService.CancellationPolicy{WindowHours: cfg.Scheduling.CancellationWindowHours},
			EnqueueTimeout: cfg.Queue.EnqueueTimeout,
			FilesBaseURL:   cfg.Server.BaseURL,
		},
		log,
		m,
	)
	fileSvc, err := fileService.NewService(fileRepo, fileService.Config{
		Dir:         cfg.Uploads.Dir,
		MaxFileSize: cfg.Uploads.MaxFileSize,
		BaseURL:     cfg.Server.BaseURL,
	})
	if err != nil {
		log.Fatal(err, "Failed to prepare uploads directory")
	}

	// Handlers
	healthH := health.NewHandler(
		health.CheckFunc{Label: "postgres", Fn: db.PingContext},
		health.CheckFunc{Label: "redis", Fn: queue.Ping},
	)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwt),
		healthH,
		[]router.Handler{sessionHandler.NewHandler(sessionSvc)},
		[]router.Handler{
			userHandler.NewHandler(userSvc),
			providerHandler.NewHandler(providerSvc),
			availabilityHandler.NewHandler(availabilitySvc, loc),
			appointmentHandler.NewHandler(appointmentSvc, loc),
			scheduleHandler.NewHandler(scheduleSvc, loc),
			notificationHandler.NewHandler(notificationSvc),
			fileHandler.NewHandler(fileSvc),
		},
		router.RouterConfig{
			Mode:        cfg.Server.Mode,
			RateEnabled: cfg.RateLimit.Enabled,
			RateLimit:   rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:   cfg.RateLimit.Burst,
			MaxBodySize: cfg.Uploads.MaxFileSize + 1<<20,
			UploadsDir:  cfg.Uploads.Dir,
			CORSConfig:  middleware.DefaultCORSConfig(),
			Gatherer:    reg,
			Metrics:     m,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	// cancellation mails still being enqueued
	appointmentSvc.Wait()
	log.Info("Server exited properly")
}
