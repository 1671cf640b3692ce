// Package cli provides the command-line interface for brandtint.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/brandtint/brandtint/internal/pipeline"
	"github.com/brandtint/brandtint/internal/ratelimit"
	"github.com/brandtint/brandtint/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the theme extraction HTTP API",
	Long: `Run an HTTP server exposing the theme extraction pipeline.

Configuration is read from the environment (and a .env file if present):

  HTTP_PORT                    listen address (default :8080)
  NAVIGATION_TIMEOUT_SECONDS   page render timeout (default 30)
  RATE_LIMIT_PER_MINUTE        extractions per caller per minute (default 10)
  VERBOSE                      enable debug logging`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe executes the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := server.LoadConfig()
	logger := newLogger(cmd)

	limiter := ratelimit.New(map[string]int{
		"extract": cfg.RateLimitPerMinute,
	})

	p := pipeline.New(pipeline.Options{
		Logger:            logger.Named("pipeline"),
		Limiter:           limiter,
		NavigationTimeout: time.Duration(cfg.NavigationTimeout) * time.Second,
	})

	app := &server.Application{
		Config:   cfg,
		Pipeline: p,
		Logger:   logger.Named("http"),
	}
	return app.Serve()
}
