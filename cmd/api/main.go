package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/carebridge/carebridge-api/internal/http/handlers"
	chimw "github.com/carebridge/carebridge-api/internal/http/middleware"
	"github.com/carebridge/carebridge-api/internal/mailer"
	"github.com/carebridge/carebridge-api/internal/notify"
	"github.com/carebridge/carebridge-api/internal/repository"
	"github.com/carebridge/carebridge-api/internal/service"
	"github.com/carebridge/carebridge-api/pkg/auth"
	"github.com/carebridge/carebridge-api/pkg/config"
	"github.com/carebridge/carebridge-api/pkg/database"
	"github.com/carebridge/carebridge-api/pkg/events"
	"github.com/carebridge/carebridge-api/pkg/logger"
	mw "github.com/carebridge/carebridge-api/pkg/middleware"
	"github.com/carebridge/carebridge-api/pkg/obs"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	obs.Init()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to Redis (idempotency cache)
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	hospitalRepo := repository.NewHospitalRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	idempotencyStore := repository.NewRedisIdempotencyStore(redisClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, hospitalRepo, appointmentRepo, cfg)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, hospitalRepo, eventBus)
	hospitalService := service.NewHospitalService(hospitalRepo, eventBus)
	chatService := service.NewChatService(cfg.Chat)

	// Notification worker consumes lifecycle events
	notifyWorker := notify.NewWorker(eventBus, buildMailer(cfg))
	if err := notifyWorker.Start(); err != nil {
		logger.Error("Failed to start notification worker", "error", err)
		os.Exit(1)
	}

	// Credential endpoints share one sliding-window limiter
	authLimiter := chimw.NewRateLimiter(pool, chimw.RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
	})
	go cleanupRateLimits(ctx, authLimiter)

	h := handlers.New(authService, appointmentService, hospitalService, chatService, cfg)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.Use(obs.Instrument)

	r.Handle("/metrics", obs.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.With(authLimiter.Middleware()).Post("/register", h.RegisterUser)
			r.With(authLimiter.Middleware()).Post("/login", h.LoginUser)
			r.With(h.RequireRole(auth.RolePatient)).Get("/profile", h.UserProfile)
		})

		r.Route("/hospital", func(r chi.Router) {
			r.With(authLimiter.Middleware()).Post("/register", h.RegisterHospital)
			r.With(authLimiter.Middleware()).Post("/login", h.LoginHospital)
			r.With(h.RequireRole(auth.RoleHospital)).Get("/profile", h.HospitalProfile)
			r.With(h.RequireRole(auth.RoleHospital)).Put("/beds", h.UpdateBeds)
		})

		r.Get("/hospitals", h.ListHospitals)

		r.Route("/appointment", func(r chi.Router) {
			r.With(h.RequireRole(auth.RolePatient)).
				With(mw.IdempotencyMiddleware(idempotencyStore)).
				Post("/book", h.BookAppointment)
			r.With(h.RequireRole(auth.RolePatient)).Get("/user", h.ListUserAppointments)
			r.With(h.RequireRole(auth.RoleHospital)).Get("/get-hospital-appointments", h.ListHospitalAppointments)
			r.With(h.RequireRole(auth.RoleHospital)).Put("/confirm/{id}", h.ConfirmAppointment)
			r.With(h.RequireRole(auth.RoleHospital)).Put("/cancel/{id}", h.CancelAppointment)
		})

		r.Post("/chatbot", h.Chatbot)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting carebridge-api", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, "CareBridge", cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}
}

func cleanupRateLimits(ctx context.Context, rl *chimw.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := rl.CleanupExpired(ctx); err != nil {
				logger.Warn("Rate limit cleanup failed", "error", err)
			} else if n > 0 {
				logger.Debug("Cleaned up expired rate limits", "rows", n)
			}
		}
	}
}
