package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/desertthunder/ytz/internal/server"
	"github.com/desertthunder/ytz/internal/store"
	"github.com/gofrs/flock"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP server and blocks until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		return err
	}

	// A second instance sharing the scratch directory would race on cleanup.
	lock := flock.New(filepath.Join(config.Downloads.ScratchDir, ".ytz.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire scratch dir lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another instance is already using %s", config.Downloads.ScratchDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release scratch dir lock", "error", err)
		}
	}()

	var recorder server.Recorder
	if config.Database.Path != "" {
		db, err := store.Open(config.Database.Path, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		recorder = db
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.Logging(r.logger))
	router.Handler(&server.IndexHandler{})
	router.Handler(&server.HealthHandler{})
	router.Handler(server.NewDownloadHandler(server.DownloadHandlerOpts{
		Pipeline:  r.pipe,
		Expander:  r.expander,
		Recorder:  recorder,
		RateLimit: config.Downloads.RateLimit,
		Logger:    r.logger,
	}))

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	// No WriteTimeout: batch downloads legitimately take minutes.
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("listening at http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
