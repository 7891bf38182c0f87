/*
main.go - Game server entry point

PURPOSE:
  Starts the March of Mind game server: loads tuning, opens the save
  backend, resumes the saved game and serves the HTTP API until
  interrupted.

STARTUP SEQUENCE:
  1. Parse flags
  2. Load balance (embedded defaults + optional override file)
  3. Open the save backend
  4. Build the game and resume the saved state
  5. Configure the HTTP router
  6. Start the server with graceful shutdown

FLAGS:
  --addr       Listen address (default: :8080)
  --store      Save backend: sqlite, postgres, s3, memory (default: sqlite)
  --db-path    SQLite file (default: march-of-mind.db, ":memory:" allowed)
  --dsn        Postgres connection string
  --bucket     S3 bucket; --region, --endpoint, --prefix tune the client
  --balance    YAML file merged over the embedded tuning
  --log-level  debug, info, warn, error (default: info)
  --origin     Allowed CORS origin, repeatable
  --access-log Log every HTTP request

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the game clock and write a final save
  4. Close the save backend

EXAMPLES:
  ./server --db-path=./data/mom.db
  ./server --store=memory --log-level=debug
  ./server --store=s3 --bucket=saves --endpoint=http://localhost:9000

ENVIRONMENT:
  The AWS SDK reads its usual AWS_* variables for the s3 backend.

SEE ALSO:
  - api/server.go: Router configuration
  - store/open.go: Backend selection
*/
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

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/warp/march-of-mind/api"
	"github.com/warp/march-of-mind/factory"
	"github.com/warp/march-of-mind/game"
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/store"
)

// Set with -ldflags "-X main.version=... -X main.buildTime=...".
var (
	version   = "dev"
	buildTime = ""
)

const appName = "march-of-mind"

type serverFlags struct {
	addr        string
	balancePath string
	logLevel    string
	origins     []string
	accessLog   bool
	store       store.Options
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f serverFlags
	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve the March of Mind game API",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.addr, "addr", ":8080", "listen address")
	fl.StringVar(&f.balancePath, "balance", "", "YAML file merged over the embedded tuning")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringSliceVar(&f.origins, "origin", nil, "allowed CORS origin (repeatable)")
	fl.BoolVar(&f.accessLog, "access-log", false, "log every HTTP request")
	fl.StringVar(&f.store.Kind, "store", store.KindSQLite, "save backend: sqlite, postgres, s3, memory")
	fl.StringVar(&f.store.Path, "db-path", "march-of-mind.db", "sqlite database path")
	fl.StringVar(&f.store.DSN, "dsn", "", "postgres connection string")
	fl.StringVar(&f.store.Bucket, "bucket", "", "s3 bucket")
	fl.StringVar(&f.store.Region, "region", "", "s3 region")
	fl.StringVar(&f.store.Endpoint, "endpoint", "", "s3 endpoint override")
	fl.StringVar(&f.store.Prefix, "prefix", "", "s3 key prefix")
	return cmd
}

func run(ctx context.Context, f serverFlags) error {
	level, err := log.ParseLevel(f.logLevel)
	if err != nil {
		return &generic.ConfigError{Source: "flags", Field: "log-level", Reason: err.Error()}
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "mom",
	})

	balance, err := factory.LoadBalance(f.balancePath)
	if err != nil {
		logger.Error("failed to load balance", "err", err)
		return err
	}
	catalog, err := factory.DefaultCatalog()
	if err != nil {
		logger.Error("failed to load catalog", "err", err)
		return err
	}

	backend, err := store.Open(ctx, f.store)
	if err != nil {
		logger.Error("failed to open save backend", "store", f.store.Kind, "err", err)
		return err
	}
	defer backend.Close()

	metrics := api.NewMetrics()
	g, err := game.New(game.Options{
		Balance:  balance,
		Catalog:  catalog,
		Store:    backend,
		Logger:   logger,
		Observer: metrics,
	})
	if err != nil {
		return err
	}
	metrics.WatchResources(g, generic.ResourceMoney, generic.ResourceInsights)

	if err := g.Init(ctx); err != nil {
		logger.Warn("saved game could not be read, starting fresh", "err", err)
	}

	h := api.NewHandler(g, backend, api.VersionDTO{Version: version, Name: appName, BuildTime: buildTime})
	router := api.NewRouter(h, api.Options{
		AllowedOrigins: f.origins,
		Metrics:        metrics,
		AccessLog:      f.accessLog,
	})

	server := &http.Server{
		Addr:         f.addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", f.addr, "store", f.store.Kind, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			g.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	g.Stop()
	if err := g.SaveGame(shutdownCtx); err != nil {
		logger.Error("final save failed", "err", err)
		return err
	}
	logger.Info("server stopped", "date", g.View().DisplayDate)
	return nil
}
