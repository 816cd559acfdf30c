package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlink-go/internal/container"
	"go.uber.org/zap"
)

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		do.ProvideValue(injector, options)

		container.LoggerPackage(injector)
		container.RedisPackage(injector)
		container.PostgresPackage(injector)
		container.RepositoryPackage(injector)
		container.ServicePackage(injector)
		container.GeoPackage(injector)
		container.PublisherGroupPackage(injector)
		container.RateLimitPackage(injector)
		container.HTTPPackage(injector)

		logger := do.MustInvoke[*zap.Logger](injector)

		// Invoking the API registers all routes on the router.
		do.MustInvoke[huma.API](injector)

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", options.Port),
			Handler:           do.MustInvoke[*chi.Mux](injector),
			ReadHeaderTimeout: 10 * time.Second,
		}

		hooks.OnStart(func() {
			logger.Info("starting server", zap.Int("port", options.Port))

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logger.Error("server shutdown failed", zap.Error(err))
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("container shutdown failed", zap.Error(err))
			}
		})
	})

	cli.Run()
}
