/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/radiostream/internal/api"
	"github.com/friendsincode/radiostream/internal/cache"
	"github.com/friendsincode/radiostream/internal/config"
	"github.com/friendsincode/radiostream/internal/db"
	"github.com/friendsincode/radiostream/internal/eventbus"
	"github.com/friendsincode/radiostream/internal/events"
	"github.com/friendsincode/radiostream/internal/library"
	"github.com/friendsincode/radiostream/internal/settings"
	"github.com/friendsincode/radiostream/internal/smartblock"
	"github.com/friendsincode/radiostream/internal/telemetry"
	"github.com/friendsincode/radiostream/internal/version"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db        *gorm.DB
	cache     *cache.Cache
	bus       *events.Bus
	forwarder *eventbus.Forwarder
	library   *library.Library
	settings  *settings.Store
	engine    *smartblock.Engine
	api       *api.API
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(corsMiddleware(cfg.CORSOrigins))
	router.Use(rateLimitMiddleware(cfg.RateLimit))
	router.Use(telemetry.TracingMiddleware("radiostream-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		_ = srv.Close()
		return nil, err
	}

	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	s.DeferClose(func() error { return db.Close(database) })
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = s.cfg.RedisAddr
	cacheCfg.RedisPassword = s.cfg.RedisPassword
	cacheCfg.RedisDB = s.cfg.RedisDB
	settingsCache, err := cache.New(cacheCfg, s.logger)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		settingsCache = cache.Disabled(s.logger)
	}
	s.cache = settingsCache
	s.DeferClose(func() error { return s.cache.Close() })

	if s.cfg.NATSURL != "" {
		nc, err := eventbus.Dial(eventbus.DefaultNATSConfig(s.cfg.NATSURL), s.logger)
		if err != nil {
			return err
		}
		s.forwarder = eventbus.NewForwarder(s.bus, nc, s.logger)
		s.forwarder.Start()
		s.DeferClose(s.forwarder.Close)
		s.logger.Info().Str("url", s.cfg.NATSURL).Msg("forwarding events to NATS")
	}

	s.library = library.New(database, s.logger)
	s.settings = settings.NewStore(database, s.cache, s.logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.settings.EnsureDefaults(ctx); err != nil {
		return err
	}

	s.engine = smartblock.New(s.library, s.logger)
	s.api = api.New(s.library, s.settings, s.engine, s.bus, s.cfg.DefaultCount, s.logger)
	return nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Bus returns the in-process event bus.
func (s *Server) Bus() *events.Bus {
	return s.bus
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"version": version.Version,
			"cache":   s.cache.IsAvailable(),
			"nats":    s.forwarder != nil,
		})
	})

	s.router.Handle("/metrics", telemetry.Handler())
	s.router.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(version.Get())
	})

	s.api.Routes(s.router)
}

// String describes where the server listens.
func (s *Server) String() string {
	return fmt.Sprintf("radiostream server on %s", s.cfg.HTTPAddr())
}
