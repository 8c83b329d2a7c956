// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer, the composition root of the
// application:
//
//	config.Config → OpenStore → repository.Store
//	Store → AccountService, CatalogService → handlers → routes
//
// Each layer only receives what it needs. Services get repository
// interfaces (never the concrete mongo or sqlite type), handlers get
// services, and nothing below this package knows how the others were built.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/enrollment/internal/auth"
	"github.com/sakif/enrollment/internal/config"
	"github.com/sakif/enrollment/internal/handler"
	"github.com/sakif/enrollment/internal/middleware"
	"github.com/sakif/enrollment/internal/repository"
	mongoRepo "github.com/sakif/enrollment/internal/repository/mongo"
	sqliteRepo "github.com/sakif/enrollment/internal/repository/sqlite"
	"github.com/sakif/enrollment/internal/service"
	"github.com/sakif/enrollment/internal/session"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store: Start closes it on the way out, after in-flight
// requests have finished.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// OpenStore connects the backend selected by cfg.Driver.
//
// IMPORT ALIASES:
// repository/mongo and repository/sqlite are imported as mongoRepo and
// sqliteRepo so they don't read like the driver packages they wrap.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		db, err := mongoRepo.New(ctx, cfg.URI, cfg.Name, cfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to mongo", slog.String("database", cfg.Name))
		return db, nil

	case config.DriverSQLite:
		if cfg.Path != ":memory:" {
			// Like `mkdir -p`: the data directory may not exist on first run.
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite database", slog.String("path", cfg.Path))
		return db, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// New builds the dependency graph on top of store and registers the routes.
//
// An empty session secret is replaced by a random one. Sessions then do not
// survive a restart, which is fine for local runs but not for production.
func New(cfg config.Config, logger *slog.Logger, store repository.Store) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if s.config.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		s.config.Session.Secret = secret
		logger.Warn("session.secret not set; using a random secret, sessions end on restart")
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET       /, /index            → landing page
//	GET       /courses[/{year}]    → catalog
//	GET|POST  /register, /login    → account forms
//	GET       /logout              → end the session
//	GET|POST  /enrollment          → enroll + listing (logged-in only)
//	GET       /user                → user listing
//	GET       /css-test            → stylesheet check
//	GET       /static/*            → CSS
//	          /api, /api/{id}      → JSON user resource
//
// MIDDLEWARE ORDER:
//  1. RequestID: unique id per request, picked up by the logger
//  2. RealIP: client IP from X-Forwarded-For / X-Real-IP
//  3. Recoverer: a panic becomes a 500 instead of killing the process
//  4. sessions.Load: decode the session cookie into the request context
//  5. Logger: one line per request, including request and user id
func (s *Server) setupRoutes() error {
	sessions, err := session.NewManager(s.config.Session.Secret, s.config.Session.TTL, s.config.Session.Secure, s.logger)
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(sessions.Load)
	s.router.Use(middleware.Logger(s.logger))

	// GET /static/css/main.css → {StaticDir}/css/main.css
	fileServer := http.FileServer(http.Dir(s.config.Server.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Services ===
	passwords := auth.NewPasswordServiceWithCost(s.config.Password.Cost)
	accounts := service.NewAccountService(s.store, s.store, passwords, s.logger)
	catalog := service.NewCatalogService(s.store, s.store, s.store, s.logger)

	// === Page Routes ===
	renderer, err := handler.NewRenderer(s.config.Server.TemplateDir, sessions, s.logger)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	pages := handler.NewPageHandler(renderer, catalog, accounts)
	s.router.Get("/", pages.HandleIndex)
	s.router.Get("/index", pages.HandleIndex)
	s.router.Get("/courses", pages.HandleCourses)
	s.router.Get("/courses/{year:[0-9]+}", pages.HandleCourses)
	s.router.Get("/user", pages.HandleUsers)
	s.router.Get("/css-test", pages.HandleCSSTest)

	accountHandler := handler.NewAccountHandler(renderer, accounts, s.logger)
	s.router.Get("/register", accountHandler.HandleRegister)
	s.router.Post("/register", accountHandler.HandleRegister)
	s.router.Get("/login", accountHandler.HandleLogin)
	s.router.Post("/login", accountHandler.HandleLogin)
	s.router.Get("/logout", accountHandler.HandleLogout)

	enrollmentHandler := handler.NewEnrollmentHandler(renderer, catalog)
	s.router.Group(func(r chi.Router) {
		r.Use(session.RequireUser("/register"))
		r.Get("/enrollment", enrollmentHandler.HandleEnrollment)
		r.Post("/enrollment", enrollmentHandler.HandleEnrollment)
	})

	// === API Routes ===
	// Both /api and /api/ are served; neither redirects.
	api := handler.NewUserAPIHandler(accounts, s.logger)
	for _, collection := range []string{"/api", "/api/"} {
		s.router.Get(collection, api.HandleList)
		s.router.Post(collection, api.HandleCreate)
	}
	s.router.Get("/api/{id}", api.HandleGet)
	s.router.Put("/api/{id}", api.HandleUpdate)
	s.router.Delete("/api/{id}", api.HandleDelete)

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully:
//  1. stop accepting new connections
//  2. give in-flight requests up to 30 seconds to finish
//  3. close the store
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
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
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
