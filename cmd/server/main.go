package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rpggio/hvacquote/internal/config"
	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/project"
	"github.com/rpggio/hvacquote/internal/logging"
	"github.com/rpggio/hvacquote/internal/mcp"
	"github.com/rpggio/hvacquote/internal/metrics"
	"github.com/rpggio/hvacquote/internal/sqlite"
	"github.com/rpggio/hvacquote/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hvacquote: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := logging.OpenFile(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := logging.New(cfg.Log, version, logWriter)

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "types", cat.Len(), "path", cfg.Catalog.Path)

	reg := metrics.New()
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	store := project.NewStore(sqlite.NewKVRepository(db), cat,
		project.WithLogger(logger),
		project.WithDebounce(cfg.Store.Debounce),
		project.WithActivity(activitySvc),
		project.WithMetrics(reg),
	)
	if err := store.Open(ctx); err != nil {
		return fmt.Errorf("opening project store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("final save failed", "project_id", store.ActiveID(), "error", err)
		}
	}()

	mcpServer := mcp.NewServer(mcp.Config{
		Store:         store,
		Activity:      activitySvc,
		Metrics:       reg,
		AuthToken:     cfg.Auth.Token,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = reg.Handler()
	}
	return runHTTPMode(ctx, logger, cfg, transport.Options{
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		),
		Estimates: store,
		Metrics:   metricsHandler,
		AuthToken: cfg.Auth.Token,
		Logger:    logger,
	})
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, cfg config.Config, opts transport.Options) error {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Token != "", "metrics", cfg.Metrics.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
