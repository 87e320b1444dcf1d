package cli

import (
	"context"
	"time"

	"github.com/charmkit/pje-agent/pkg/cli/config"
	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdHook() *cli.Command {
	var (
		charmCfg  config.Charm
		notifyCfg config.Notify
	)

	flags := append(charmCfg.Flags(), notifyCfg.Flags()...)

	return &cli.Command{
		Name:      "hook",
		Usage:     "Process a single unit hook event",
		ArgsUsage: "<install|config-changed|upgrade-charm|update-status|stop>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("hook name is required")
			}

			kind := model.ParseHookKind(name)
			if kind == model.HookUnknown {
				return goerr.New("unknown hook name", goerr.V("name", name))
			}

			event := &model.HookEvent{
				ID:         uuid.NewString(),
				Kind:       kind,
				ReceivedAt: time.Now(),
			}

			reconciler := buildReconciler(&charmCfg, &notifyCfg)
			return reconciler.ProcessHook(ctx, event)
		},
	}
}
