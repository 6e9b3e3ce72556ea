package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/spoolworks/spindle/internal/logging"
	httpadapter "github.com/spoolworks/spindle/pkg/adapters/http"
)

// serveConfig is read from the environment; flags override.
type serveConfig struct {
	Addr            string        `env:"SPINDLE_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SPINDLE_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulation HTTP server",
	Long: `Starts the spindle engine in server mode, exposing a JSON API over HTTP:
create simulations from uploaded storyworlds, queue agent actions, step
frames, and read views, events, and outcomes. Prometheus metrics are
served at /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		var cfg serveConfig
		if err := env.Parse(&cfg); err != nil {
			fmt.Printf("Error parsing environment: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		debug, _ := cmd.Flags().GetBool("debug")
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		server := httpadapter.NewServer(httpadapter.WithLogger(logger))
		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: server.Handler(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Spindle Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", cfg.ShutdownTimeout, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Spindle Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
