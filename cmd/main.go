// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_cpd_track/internal/config"
	"go_cpd_track/internal/handlers"
	"go_cpd_track/internal/middleware"
	"go_cpd_track/internal/repository"
	"go_cpd_track/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	// Configを読み込み
	if err := config.LoadConfig("../configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	// dev環境では色付きのtint、それ以外はJSONで出力する
	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	log.Println("Log Config Loaded...")

	slog.SetDefault(logger)
	slog.Info("Application starting...")

	// データベース接続 (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// Dependency Injection
	userRepo := repository.NewGormUserRepository()
	orgRepo := repository.NewGormOrgRepository()
	entryRepo := repository.NewGormEntryRepository()
	goalRepo := repository.NewGormGoalRepository()

	mailer := service.NewMailer(&config.Cfg)

	progressService := service.NewProgressService(db, goalRepo, entryRepo, orgRepo, userRepo, mailer)
	goalService := service.NewGoalService(db, goalRepo, orgRepo, userRepo, progressService)
	entryService := service.NewEntryService(db, entryRepo, orgRepo, progressService)
	orgService := service.NewOrgService(db, orgRepo, userRepo)
	authService := service.NewAuthService(db, userRepo, &config.Cfg)

	authHandler := handlers.NewAuthHandler(authService, logger)
	entryHandler := handlers.NewEntryHandler(entryService, logger)
	goalHandler := handlers.NewGoalHandler(goalService, progressService, logger)
	orgHandler := handlers.NewOrgHandler(orgService, logger)

	// Setup Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	// CORS 設定と適用 (設定ファイルから読み込んだ値を使用)
	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// --- Protected routes ---
		r.Group(func(r chi.Router) {
			if strings.ToLower(appEnv) == "dev" {
				// 開発環境はヘッダーで操作者を指定できる
				slog.Info("Applying development authentication middleware")
				r.Use(middleware.DevActorContextMiddleware)
			} else {
				slog.Info("Applying JWT authentication middleware")
				r.Use(middleware.JWTAuthMiddleware(&config.Cfg))
			}

			r.Get("/auth/me", authHandler.GetMe)

			// CPD entry routes
			r.Route("/entries", func(r chi.Router) {
				r.Post("/", entryHandler.PostEntry)
				r.Get("/", entryHandler.ListEntries)
				r.Get("/{entry_id}", entryHandler.GetEntry)
				r.Patch("/{entry_id}", entryHandler.PatchEntry)
				r.Delete("/{entry_id}", entryHandler.DeleteEntry)
				r.Post("/{entry_id}/review", entryHandler.ReviewEntry)
			})

			// Goal routes
			r.Route("/goals", func(r chi.Router) {
				r.Post("/", goalHandler.PostGoal)
				r.Get("/", goalHandler.ListGoals)
				r.Get("/deadlines", goalHandler.GetDeadlines)
				r.Get("/overdue", goalHandler.GetOverdue)
				r.Get("/{goal_id}", goalHandler.GetGoal)
				r.Patch("/{goal_id}", goalHandler.PatchGoal)
				r.Delete("/{goal_id}", goalHandler.DeleteGoal)
				r.Post("/{goal_id}/cancel", goalHandler.CancelGoal)
				r.Post("/{goal_id}/reactivate", goalHandler.ReactivateGoal)
				r.Get("/{goal_id}/participants", goalHandler.GetParticipants)
			})

			// Organization hierarchy routes
			r.Route("/organizations", func(r chi.Router) {
				r.Post("/", orgHandler.PostOrganization)
				r.Get("/", orgHandler.ListOrganizations)
				r.Get("/{organization_id}", orgHandler.GetOrganization)
				r.Patch("/{organization_id}", orgHandler.PatchOrganization)
				r.Delete("/{organization_id}", orgHandler.DeleteOrganization)
				r.Post("/{organization_id}/departments", orgHandler.PostDepartment)
				r.Get("/{organization_id}/departments", orgHandler.ListDepartments)
			})
			r.Route("/departments", func(r chi.Router) {
				r.Patch("/{department_id}", orgHandler.PatchDepartment)
				r.Delete("/{department_id}", orgHandler.DeleteDepartment)
				r.Post("/{department_id}/teams", orgHandler.PostTeam)
				r.Get("/{department_id}/teams", orgHandler.ListTeams)
				r.Post("/{department_id}/managers", orgHandler.PostDepartmentManager)
				r.Delete("/{department_id}/managers/{user_id}", orgHandler.DeleteDepartmentManager)
			})
			r.Route("/teams", func(r chi.Router) {
				r.Patch("/{team_id}", orgHandler.PatchTeam)
				r.Delete("/{team_id}", orgHandler.DeleteTeam)
				r.Post("/{team_id}/members", orgHandler.PostTeamMember)
				r.Get("/{team_id}/members", orgHandler.ListTeamMembers)
				r.Delete("/{team_id}/members/{user_id}", orgHandler.DeleteTeamMember)
				r.Post("/{team_id}/managers", orgHandler.PostTeamManager)
				r.Delete("/{team_id}/managers/{user_id}", orgHandler.DeleteTeamManager)
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		err = sqlDB.PingContext(r.Context())
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
