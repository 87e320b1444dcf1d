package cli

import (
	"github.com/charmkit/pje-agent/pkg/cli/config"
	"github.com/charmkit/pje-agent/pkg/infra/command"
	"github.com/charmkit/pje-agent/pkg/infra/juju"
	"github.com/charmkit/pje-agent/pkg/infra/notify"
	"github.com/charmkit/pje-agent/pkg/infra/snap"
	"github.com/charmkit/pje-agent/pkg/infra/unit"
	"github.com/charmkit/pje-agent/pkg/usecase"
)

// buildReconciler wires the production infrastructure into a Reconciler.
func buildReconciler(charmCfg *config.Charm, notifyCfg *config.Notify) *usecase.Reconciler {
	runner := command.NewRunner()

	var opts []usecase.ReconcilerOption
	if notifyCfg.Enabled() {
		opts = append(opts, usecase.WithNotifier(notify.NewSlack(notifyCfg.SlackWebhookURL)))
	}

	return usecase.NewReconciler(
		charmCfg.ConfigPath,
		unit.New(runner),
		snap.NewManager(runner, charmCfg.SnapDataDir),
		juju.NewAgentConf(charmCfg.AgentConfPath),
		opts...,
	)
}
