package cli

import (
	"context"
	"os"

	"github.com/charmkit/pje-agent/pkg/cli/config"
	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/charmkit/pje-agent/pkg/infra/juju"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

func cmdRender() *cli.Command {
	var charmCfg config.Charm

	return &cli.Command{
		Name:  "render",
		Usage: "Render the exporter snap configuration from the charm config",
		Flags: charmCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rendered, err := renderSnapConfig(ctx, &charmCfg)
			if err != nil {
				return err
			}

			data, err := rendered.Marshal()
			if err != nil {
				return err
			}

			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

// renderSnapConfig loads the charm config and renders the snap config
// document. The controller CA cert falls back to the local agent.conf;
// when that is unavailable (e.g. rendering off-unit) the cert is left
// empty and validation will flag it.
func renderSnapConfig(ctx context.Context, charmCfg *config.Charm) (model.SnapConfig, error) {
	cfg, err := model.LoadCharmConfig(charmCfg.ConfigPath)
	if err != nil {
		return model.SnapConfig{}, err
	}

	caCert, set, err := cfg.ExplicitCACert()
	if err != nil {
		return model.SnapConfig{}, err
	}
	if !set {
		caCert, err = juju.NewAgentConf(charmCfg.AgentConfPath).CACert()
		if err != nil {
			ctxlog.From(ctx).Warn("could not read controller CA cert from agent.conf", "error", err)
			caCert = ""
		}
	}

	return cfg.ExporterConfig(caCert).Render(), nil
}
