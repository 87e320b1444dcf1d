package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmkit/pje-agent/pkg/cli/config"
	controller "github.com/charmkit/pje-agent/pkg/controller/http"
	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/charmkit/pje-agent/pkg/usecase"
	"github.com/charmkit/pje-agent/pkg/utils/async"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		charmCfg  config.Charm
		notifyCfg config.Notify
	)

	flags := append(serverCfg.Flags(), charmCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the operator agent",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting pje-agent",
				slog.String("addr", serverCfg.Addr),
				slog.String("charm_config", charmCfg.ConfigPath),
			)

			serveCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			reconciler := buildReconciler(&charmCfg, &notifyCfg)

			server, err := controller.NewServer(
				serveCtx,
				reconciler,
				controller.WithAddr(serverCfg.Addr),
				controller.WithHookSecret(serverCfg.HookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Settle the unit state on startup, like a fresh hook delivery
			dispatchHook(serveCtx, reconciler, model.HookConfigChanged)

			if err := watchCharmConfig(serveCtx, reconciler, charmCfg.ConfigPath); err != nil {
				return err
			}

			go runStatusTicker(serveCtx, reconciler, charmCfg.StatusInterval)

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}
			cancel()

			// Graceful shutdown
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// dispatchHook runs a hook event asynchronously with panic recovery.
func dispatchHook(ctx context.Context, reconciler *usecase.Reconciler, kind model.HookKind) {
	event := &model.HookEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		ReceivedAt: time.Now(),
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return reconciler.ProcessHook(ctx, event)
	})
}

// watchCharmConfig reconciles whenever the charm config file changes.
func watchCharmConfig(ctx context.Context, reconciler *usecase.Reconciler, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create config watcher")
	}

	// Watch the directory: editors and config managers replace the file
	// rather than writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return goerr.Wrap(err, "failed to watch charm config dir", goerr.V("path", path))
	}

	logger := ctxlog.From(ctx)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				logger.Info("charm config changed", "path", path)
				dispatchHook(ctx, reconciler, model.HookConfigChanged)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}

// runStatusTicker periodically re-runs update-status, mirroring the Juju
// update-status hook cadence.
func runStatusTicker(ctx context.Context, reconciler *usecase.Reconciler, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dispatchHook(ctx, reconciler, model.HookUpdateStatus)
		}
	}
}
