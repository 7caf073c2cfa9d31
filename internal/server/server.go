// Package server boots the application: config, stores, queue workers, the
// scheduler, and the HTTP stack.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/atelier/app/repositories"
	"github.com/shashiranjanraj/atelier/app/routes"
	"github.com/shashiranjanraj/atelier/config"
	"github.com/shashiranjanraj/atelier/pkg/cache"
	"github.com/shashiranjanraj/atelier/pkg/database"
	"github.com/shashiranjanraj/atelier/pkg/logger"
	"github.com/shashiranjanraj/atelier/pkg/metrics"
	"github.com/shashiranjanraj/atelier/pkg/middleware"
	"github.com/shashiranjanraj/atelier/pkg/queue"
	"github.com/shashiranjanraj/atelier/pkg/reqid"
	"github.com/shashiranjanraj/atelier/pkg/response"
	"github.com/shashiranjanraj/atelier/pkg/router"
	"github.com/shashiranjanraj/atelier/pkg/schedule"
	"github.com/shashiranjanraj/atelier/pkg/storage"
	"github.com/shashiranjanraj/atelier/pkg/ws"
)

// App is the booted application.
type App struct {
	Router   *router.Router
	Services *routes.Services
	Hub      *ws.Hub

	logSink *logger.MongoHandler
}

// Boot connects the stores and wires the full service graph. It does not
// start listening; callers choose between Run (HTTP) and worker-only modes.
func Boot() (*App, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, cache disabled", "error", err)
	}
	storage.Connect()

	app := &App{}

	// Ship logs to Mongo alongside stdout in production.
	if config.AppEnv() == "production" {
		sink := logger.NewMongoHandler(database.Collection("logs"))
		logger.L = slog.New(logger.NewMultiHandler(logger.L.Handler(), sink))
		app.logSink = sink
	}

	app.Hub = ws.NewHub()
	go app.Hub.Run()

	app.Services = routes.Build(app.Hub)

	queue.UseFailedStore(repositories.NewFailedJobRepository())
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	app.Router = buildRouter(app)
	return app, nil
}

func buildRouter(app *App) *router.Router {
	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
	)

	routes.RegisterAPI(r, app.Services, app.Hub)

	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, response.M{"status": "ok"})
	}))
	return r
}

// StartWorkers launches queue workers and the scheduler, including the
// daily push-token cleanup sweep.
func (a *App) StartWorkers(ctx context.Context, n int) {
	queue.StartWorkers(ctx, n)

	schedule.Daily().
		Name("push-token-cleanup").
		WithoutOverlapping().
		Run(func() {
			sweepCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			if _, err := a.Services.Push.CleanupSweep(sweepCtx); err != nil {
				logger.Error("scheduled token sweep failed", "error", err)
			}
		})
	go schedule.Start(ctx)
}

// Run serves HTTP until SIGINT/SIGTERM, then drains gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.StartWorkers(ctx, 4)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           a.Router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	a.Close()
	return nil
}

// Close releases shared resources.
func (a *App) Close() {
	if a.logSink != nil {
		a.logSink.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("mongo disconnect", "error", err)
	}
	if cache.RDB != nil {
		_ = cache.RDB.Close()
	}
	_ = os.Stdout.Sync()
}
