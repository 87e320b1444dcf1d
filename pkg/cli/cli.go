package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmkit/pje-agent/pkg/cli/config"
	"github.com/charmkit/pje-agent/pkg/domain/types"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		logger    *slog.Logger
	)
	sentryEnabled := false

	app := &cli.Command{
		Name:    "pje-agent",
		Usage:   "Operator agent for the prometheus-juju-exporter snap",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			sentryEnabled, err = sentryCfg.Configure()
			if err != nil {
				return nil, err
			}
			if sentryEnabled {
				logger.Debug("sentry error reporting enabled", slog.String("env", sentryCfg.Env))
			}

			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdHook(),
			cmdRender(),
			cmdValidate(),
			cmdCI(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))

		if sentryEnabled {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}
		return err
	}

	return nil
}
