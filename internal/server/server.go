package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/brandtint/brandtint/internal/pipeline"
)

// Application wires the pipeline into HTTP handlers.
type Application struct {
	Config   Config
	Pipeline *pipeline.Pipeline
	Logger   hclog.Logger
}

// Routes builds the HTTP mux.
func (app *Application) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/theme", app.handleExtractTheme)
	mux.HandleFunc("GET /healthz", app.handleHealth)
	return mux
}

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (app *Application) Serve() error {
	srv := &http.Server{
		Addr:         app.Config.HTTPPort,
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	shutdownErr := make(chan error)

	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		s := <-shutdown
		app.Logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	app.Logger.Info("starting server", "addr", app.Config.HTTPPort)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}
