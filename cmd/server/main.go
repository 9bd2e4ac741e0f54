package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"timetable-service/internal/config"
	"timetable-service/internal/database"
	"timetable-service/internal/handlers"
	"timetable-service/internal/middleware"
	"timetable-service/internal/repository"
	"timetable-service/internal/service"
	"timetable-service/pkg/concurrent"
	"timetable-service/pkg/logger"
	"timetable-service/pkg/metrics"
)

// loadEnvFile загружает переменные окружения из .env файла
func loadEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		// Если файл не существует, это не критическая ошибка - используем переменные окружения системы
		if os.IsNotExist(err) {
			log.Warn().Str("file", filename).Msg(".env file not found, using system environment variables")
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Пропускаем пустые строки и комментарии
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		// Разбираем строку вида KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Не перезаписываем переменные окружения, которые уже установлены
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

func main() {
	// Load environment variables from .env file
	if err := loadEnvFile(".env"); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup structured logging based on environment
	logger.Setup(cfg.Server.Env)

	log.Info().Str("env", cfg.Server.Env).Str("port", cfg.Server.Port).Str("config", cfg.String()).Msg("Starting Timetable Service API Server")

	// Connect to database
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	// NOTE: Do NOT defer db.Close() here - database must be closed AFTER all goroutines stop
	// See graceful shutdown sequence at end of run() (Phase 4)

	if err := run(cfg, db); err != nil {
		log.Error().Err(err).Msg("Application initialization failed, cleaning up resources")
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Error closing database during error cleanup")
		}
		log.Fatal().Err(err).Msg("Fatal initialization error")
	}
}

// run выполняет инициализацию после подключения к базе данных и блокируется
// до сигнала завершения.
func run(cfg *config.Config, db *database.DB) error {
	log.Info().Msg("Database connected successfully")

	// Create context for graceful shutdown of health check goroutine
	healthCheckCtx, cancelHealthCheck := context.WithCancel(context.Background())

	// Start periodic database health check and metrics collection
	concurrent.SafeGo(func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		failureCount := 0
		const healthCheckTimeout = 5 * time.Second

		for {
			select {
			case <-healthCheckCtx.Done():
				log.Debug().Msg("Health check goroutine shutting down")
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(healthCheckCtx, healthCheckTimeout)
				err := db.HealthCheck(ctx)
				cancel()

				if healthCheckCtx.Err() != nil {
					return
				}

				if err != nil {
					failureCount++
					log.Warn().Err(err).Int("failure_count", failureCount).Int("max_failures", 3).Msg("Database health check failed")
					metrics.DBErrorsTotal.Inc()

					if failureCount >= 3 {
						log.Fatal().Msg("Database connection lost after 3 consecutive failures, shutting down")
					}
				} else {
					if failureCount > 0 {
						log.Info().Int("previous_failures", failureCount).Msg("Database health check recovered")
					}
					failureCount = 0
				}

				// Обновляем метрики подключений к БД
				stats := db.Pool.Stat()
				metrics.DBConnectionsActive.Set(float64(stats.AcquiredConns()))
				metrics.DBConnectionsIdle.Set(float64(stats.IdleConns()))
				log.Debug().Interface("db_stats", db.Stats()).Msg("Database pool stats")
			}
		}
	})

	// Services
	authService, err := service.NewAuthService(cfg.Admin, cfg.Session)
	if err != nil {
		cancelHealthCheck()
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	runRepo := repository.NewScheduleRunRepository(db.Sqlx)
	scheduleService := service.NewScheduleService(runRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db.Pool)
	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction(), cfg.Session.SameSite)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, cfg.Solver)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	corsConfig := middleware.DefaultCORSConfig()
	csrfStore := middleware.NewCSRFTokenStore()
	bodyLimitConfig := middleware.DefaultBodyLimitConfig()

	loginRateLimiter := middleware.LoginRateLimiterWithProxies(cfg.Server.TrustedProxies)
	generateRateLimiter := middleware.GenerateRateLimiterWithProxies(cfg.Server.TrustedProxies)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.BodyLimitMiddleware(bodyLimitConfig))
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.CORSMiddleware(corsConfig))

	r.Get("/health", healthHandler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Публичные маршруты
		r.With(middleware.RateLimitMiddleware(loginRateLimiter)).Post("/auth/login", authHandler.Login)

		// Маршруты оператора
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)

			r.With(middleware.CSRFMiddleware(csrfStore)).Post("/auth/logout", authHandler.Logout)

			r.Route("/schedules", func(r chi.Router) {
				r.Post("/validate", scheduleHandler.Validate)
				r.With(
					middleware.RateLimitMiddleware(generateRateLimiter),
					middleware.CSRFMiddleware(csrfStore),
				).Post("/generate", scheduleHandler.Generate)
				r.Post("/conflicts", scheduleHandler.Conflicts)
			})

			r.Route("/runs", func(r chi.Router) {
				r.Get("/", scheduleHandler.ListRuns)
				r.Get("/{id}", scheduleHandler.GetRun)
			})
		})
	})

	// Create HTTP server. Write timeout leaves room for a bounded solve:
	// the generate endpoint blocks for up to the configured solver deadline.
	writeTimeout := 60 * time.Second
	if cfg.Solver.DefaultTimeLimitSeconds > 0 {
		writeTimeout = time.Duration(cfg.Solver.DefaultTimeLimitSeconds*float64(time.Second)) + 30*time.Second
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	// Give server a brief moment to start, checking for immediate errors
	select {
	case err := <-serverErrChan:
		cancelHealthCheck()
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server is shutting down")

	// GRACEFUL SHUTDOWN SEQUENCE (CRITICAL - ORDER MATTERS)
	// Phase 1: Shutdown HTTP server (stops accepting new requests)
	// Phase 2: Stop background goroutines (health check, rate limiter cleanup, CSRF cleanup)
	// Phase 3: Wait brief grace period for goroutines to exit
	// Phase 4: Close database connection (after all goroutines have stopped)

	log.Debug().Msg("Phase 1: Shutting down HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Debug().Msg("Phase 1: HTTP server shutdown complete")

	log.Debug().Msg("Phase 2: Stopping background goroutines")
	cancelHealthCheck()
	loginRateLimiter.Stop()
	generateRateLimiter.Stop()
	csrfStore.Stop()

	// PHASE 3: Wait for background goroutines to exit before closing the
	// database they may still be using
	time.Sleep(200 * time.Millisecond)

	log.Debug().Msg("Phase 4: Closing database connection")
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
