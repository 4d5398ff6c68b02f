// Package server wires repositories, services, handlers, and routes
// together, and owns startup and graceful shutdown. main.go stays minimal;
// everything that needs the dependency graph lives here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/akshatp/pgdesk/internal/auth"
	"github.com/akshatp/pgdesk/internal/handler"
	"github.com/akshatp/pgdesk/internal/middleware"
	"github.com/akshatp/pgdesk/internal/model"
	sqliteRepo "github.com/akshatp/pgdesk/internal/repository/sqlite"
	"github.com/akshatp/pgdesk/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Server holds the router and the resources it owns. The database
// connection is closed during shutdown so the WAL gets flushed.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, services, handlers,
// routes. Each layer only sees the interface below it; handlers never
// touch the database directly.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)

	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	listingService := service.NewListingService(s.db.Listings(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	listingHandler := handler.NewListingHandler(listingService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HandleHealth)

		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Public search: no token required.
		r.Get("/pgs", listingHandler.HandleSearch)

		// Owner routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(auth.RequireRole(model.RoleOwner))
			r.Post("/pg/add", listingHandler.HandleSubmit)
			r.Get("/owner/pgs", listingHandler.HandleOwnerListings)
		})

		// Admin routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(auth.RequireRole(model.RoleAdmin))
			r.Get("/admin/pgs/pending", listingHandler.HandlePending)
			r.Get("/admin/pgs", listingHandler.HandleAll)
			r.Patch("/admin/pgs/{id}/approve", listingHandler.HandleApprove)
			r.Patch("/admin/pgs/{id}/reject", listingHandler.HandleReject)
		})
	})
}

// Router exposes the configured router, mainly for tests that drive the
// full stack through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until a SIGINT/SIGTERM arrives, then drains
// in-flight requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
