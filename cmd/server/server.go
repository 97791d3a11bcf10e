package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	gqlHandler "github.com/quipper/poc/people/be/internal/controller/graphql"
	peopleHandler "github.com/quipper/poc/people/be/internal/controller/http/people"
	usersSqlite "github.com/quipper/poc/people/be/internal/repositories/users/sqlite"
	"github.com/quipper/poc/people/be/internal/service/roster"
	"github.com/quipper/poc/people/be/pkg/common/config"
	"github.com/quipper/poc/people/be/pkg/common/logger"
	"github.com/quipper/poc/people/be/pkg/common/metrics"
	"github.com/quipper/poc/people/be/pkg/common/ratelimit"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel)
	logger.Info("starting server")

	usersRepo, err := usersSqlite.NewSQLiteRepo(cfg.UsersDBPath)
	if err != nil {
		logger.Error("init users repo: %v", err)
		os.Exit(1)
	}

	svc := roster.NewService(usersRepo, roster.Options{PageSize: cfg.PageSize, CountTotals: cfg.CountTotals})
	gql, err := gqlHandler.Handler(gqlHandler.NewResolver(svc, cfg.WindowRadius))
	if err != nil {
		logger.Error("init graphql schema: %v", err)
		os.Exit(1)
	}
	h := peopleHandler.NewHandler(svc, usersRepo, gql, cfg.WindowRadius)

	limiter := ratelimit.NewPool(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := chi.NewRouter()
	const maxBodySize = 1_000_000
	router.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(middleware.RequestSize(maxBodySize))
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	router.Handle("/metrics", metrics.Handler())
	router.Group(func(r chi.Router) {
		r.Use(limiter.Middleware(metrics.RateLimited.Inc))
		r.Mount("/", h.Router())
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Link"},
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	usersRepo.Disconnect()
	logger.Info("server stopped")
}
