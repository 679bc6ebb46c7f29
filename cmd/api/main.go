package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/bookings"
	"github.com/chachabrian/taskmate-backend/internal/catalog"
	"github.com/chachabrian/taskmate-backend/internal/config"
	"github.com/chachabrian/taskmate-backend/internal/dashboard"
	"github.com/chachabrian/taskmate-backend/internal/database"
	"github.com/chachabrian/taskmate-backend/internal/handlers"
	"github.com/chachabrian/taskmate-backend/internal/logging"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/reviews"
	"github.com/chachabrian/taskmate-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").WithError(err).Fatal("Failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	redisClient, err := services.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Redis")
	}
	defer redisClient.Close()
	cache := services.NewRedisCache(redisClient, cfg.DashboardCacheTTL)

	storage, err := services.NewStorage(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}

	// Push is optional; the service runs without it.
	push, err := services.NewPushNotifier(ctx, cfg.FirebaseServiceAccountPath, log)
	if err != nil {
		log.WithError(err).Warn("Firebase initialization failed, push notifications disabled")
		push = nil
	}

	hub := services.NewHub(log)
	go hub.Run(ctx)

	enforcer, err := middleware.NewEnforcer(cfg.RBACModelPath, cfg.RBACPolicyPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load RBAC policy")
	}

	notifier := services.NewBookingNotifier(db, hub, cache, push, log)
	limits := bookings.Limits{
		MinHours:     cfg.MinBookingHours,
		MaxHours:     cfg.MaxBookingHours,
		DefaultHours: cfg.DefaultBookingHours,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(cfg.CORSOrigins))

	handlers.RegisterRoutes(r, handlers.Deps{
		Config:    cfg,
		DB:        db,
		Cache:     cache,
		Storage:   storage,
		Hub:       hub,
		Enforcer:  enforcer,
		Bookings:  bookings.NewService(db, cache, notifier, limits, log),
		Catalog:   catalog.NewService(db, cache, log),
		Dashboard: dashboard.NewService(db, cache, log),
		Reviews:   reviews.NewService(db, cache, log),
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}
