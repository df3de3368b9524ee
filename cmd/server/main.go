package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/factoryplan/internal/catalog"
	"github.com/Simplici0/factoryplan/internal/config"
	"github.com/Simplici0/factoryplan/internal/db"
	"github.com/Simplici0/factoryplan/internal/logging"
	"github.com/Simplici0/factoryplan/internal/migrations"
	"github.com/Simplici0/factoryplan/internal/planner"
	"github.com/Simplici0/factoryplan/internal/seed"
)

type server struct {
	db      *sql.DB
	store   *catalog.Store
	planner *planner.Service
	logger  *zap.Logger
}

func newServer(database *sql.DB, logger *zap.Logger) *server {
	store := catalog.NewStore(database)
	return &server{
		db:      database,
		store:   store,
		planner: planner.NewService(store, logger),
		logger:  logger,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err), zap.String("path", cfg.DBPath))
	}
	defer database.Close()

	if err := migrations.Up(database, logging.NewGooseLogger(logger)); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	if cfg.SeedDemo {
		stats, err := seed.Run(database)
		if err != nil {
			logger.Fatal("failed to seed demo catalog", zap.Error(err))
		}
		logger.Info("demo catalog seeded", zap.Int("inserts", stats.Inserts))
	}

	srv := newServer(database, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/raw-materials", func(r chi.Router) {
			r.Get("/", s.handleRawMaterialsList)
			r.Post("/", s.handleRawMaterialsCreate)
			r.Get("/{id}", s.handleRawMaterialsGet)
			r.Put("/{id}", s.handleRawMaterialsUpdate)
			r.Delete("/{id}", s.handleRawMaterialsDelete)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleProductsList)
			r.Post("/", s.handleProductsCreate)
			r.Get("/{id}", s.handleProductsGet)
			r.Put("/{id}", s.handleProductsUpdate)
			r.Delete("/{id}", s.handleProductsDelete)
		})
		r.Get("/production/optimize", s.handleProductionOptimize)
		// The browser frontend triggers the calculation with POST.
		r.Post("/production/optimize", s.handleProductionOptimize)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleProductionOptimize(w http.ResponseWriter, r *http.Request) {
	plan, err := s.planner.ComputeOptimalPlan(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
