// kanri-admin serves the credential-gated admin backend: session
// authentication, login rate limiting, and managed content storage.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shiroyama-web/kanri"
	"github.com/shiroyama-web/kanri/content"
	"github.com/shiroyama-web/kanri/httpapi"
	"github.com/shiroyama-web/kanri/internal/config"
)

// Version is set by the build system via -ldflags.
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "kanri-admin",
		Short: "Admin backend with session authentication and content storage",
	}

	root.AddCommand(
		runCmd(),
		versionCmd(),
		resetRateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runCmd is the main server command.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the admin backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := buildLogger(cfg)
	log.Info().Str("version", Version).Msg("kanri-admin starting")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis unreachable at %s: %w", cfg.RedisAddr, err)
	}

	contents, err := content.Open(cfg.DataDir, cfg.MaxImagesPerKind)
	if err != nil {
		return fmt.Errorf("open content storage: %w", err)
	}
	defer contents.Close()

	engineCfg := kanri.DefaultConfig()
	engineCfg.Admin = kanri.AdminConfig{ID: cfg.AdminID, Secret: cfg.AdminSecret}
	engineCfg.Session.TTL = cfg.SessionTTL
	engine, err := kanri.New(rdb, engineCfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	api := httpapi.New(engine, contents, log)

	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "session store unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// versionCmd prints the version and exits.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kanri-admin %s\n", Version)
		},
	}
}

// resetRateCmd lifts the brute-force block for one client identity.
func resetRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-rate <identity>",
		Short: "Clear the login attempt history for a client IP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			defer rdb.Close()

			engineCfg := kanri.DefaultConfig()
			engineCfg.Admin = kanri.AdminConfig{ID: cfg.AdminID, Secret: cfg.AdminSecret}
			engine, err := kanri.New(rdb, engineCfg)
			if err != nil {
				return fmt.Errorf("build engine: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := engine.ResetRate(ctx, args[0]); err != nil {
				return fmt.Errorf("reset %s: %w", args[0], err)
			}
			fmt.Printf("cleared login attempt history for %s\n", args[0])
			return nil
		},
	}
}

// buildLogger constructs a zerolog.Logger based on config.
func buildLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.LogFormat == "text" {
		cw := zerolog.NewConsoleWriter()
		cw.Out = os.Stderr
		return zerolog.New(cw).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
