package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"sprintcap/internal/api"
	"sprintcap/internal/config"
	"sprintcap/internal/db"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger := config.MustInitLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("Starting sprintcap API",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Port),
	)

	// Initialize database with auto-migrations
	dbCfg := db.Config{
		Driver:         cfg.DBDriver,
		DBPath:         cfg.DBPath,
		DSN:            cfg.DBDSN,
		MigrationsPath: cfg.MigrationsPath,
	}

	database, err := db.New(dbCfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Create server
	server := api.NewServer(database, cfg, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Request size limit (5MB, logo uploads included)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
			next.ServeHTTP(w, r)
		})
	})

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"message":"sprintcap API","version":"0.1.0"}`)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"error","message":"database unavailable"}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","database":"connected"}`)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(api.RateLimitMiddleware(cfg.RateLimitRequests))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok"}`)
		})

		r.Get("/version", server.HandleVersion)

		// Member routes
		r.Get("/members", server.HandleListMembers)
		r.Post("/members", server.HandleCreateMember)
		r.Get("/members/{id}", server.HandleGetMember)
		r.Put("/members/{id}", server.HandleUpdateMember)
		r.Delete("/members/{id}", server.HandleDeleteMember)

		// Team routes
		r.Get("/teams", server.HandleListTeams)
		r.Post("/teams", server.HandleCreateTeam)
		r.Get("/teams/{id}", server.HandleGetTeam)
		r.Put("/teams/{id}", server.HandleUpdateTeam)
		r.Delete("/teams/{id}", server.HandleDeleteTeam)
		r.Get("/teams/{id}/members", server.HandleGetTeamMembers)
		r.Post("/teams/{id}/members", server.HandleAddTeamMember)
		r.Delete("/teams/{id}/members/{memberId}", server.HandleRemoveTeamMember)
		r.Post("/teams/{id}/logo", server.HandleUploadTeamLogo)

		// Sprint routes
		r.Get("/sprints", server.HandleListSprints)
		r.Post("/sprints", server.HandleCreateSprint)
		r.Get("/sprints/current", server.HandleGetCurrentSprint)
		r.Get("/sprints/{id}", server.HandleGetSprint)
		r.Put("/sprints/{id}", server.HandleUpdateSprint)
		r.Delete("/sprints/{id}", server.HandleDeleteSprint)
		r.Get("/sprints/{id}/capacity", server.HandleGetSprintCapacity)
		r.Get("/sprints/{id}/capacity.csv", server.HandleExportSprintCapacityCSV)

		// Holiday routes
		r.Get("/holidays/sprint/{sprintId}", server.HandleGetSprintHolidays)
		r.Get("/holidays/sprint/{sprintId}/member/{memberId}", server.HandleGetMemberSprintHolidays)
		r.Post("/holidays", server.HandleCreateHoliday)
		r.Post("/holidays/toggle", server.HandleToggleHoliday)
		r.Delete("/holidays/{id}", server.HandleDeleteHoliday)

		// Retro routes
		r.Get("/retro/sprint/{sprintId}", server.HandleGetSprintRetroItems)
		r.Get("/retro/team/{teamId}", server.HandleGetTeamRetroItems)
		r.Post("/retro", server.HandleCreateRetroItem)
		r.Put("/retro/{id}", server.HandleUpdateRetroItem)
		r.Delete("/retro/{id}", server.HandleDeleteRetroItem)

		// Template routes
		r.Get("/templates", server.HandleListTemplates)
		r.Post("/templates", server.HandleCreateTemplate)
		r.Get("/templates/quarters", server.HandleGetTemplateQuarters)
		r.Get("/templates/quarter/{year}/{quarter}", server.HandleGetQuarterTemplates)
		r.Post("/templates/generate", server.HandleGenerateTemplates)
		r.Get("/templates/{id}", server.HandleGetTemplate)
		r.Put("/templates/{id}", server.HandleUpdateTemplate)
		r.Delete("/templates/{id}", server.HandleDeleteTemplate)
		r.Post("/templates/{id}/adopt", server.HandleAdoptTemplate)
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for server errors
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive shutdown signal or server error
	select {
	case err := <-serverErrors:
		logger.Fatal("Server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Info("Received shutdown signal, starting graceful shutdown", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			if err := srv.Close(); err != nil {
				logger.Fatal("Failed to close server", zap.Error(err))
			}
		}

		logger.Info("Server stopped gracefully")
	}
}
