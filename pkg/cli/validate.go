package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmkit/pje-agent/pkg/cli/config"
	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var charmCfg config.Charm

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the charm configuration for the exporter service",
		Flags: charmCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rendered, err := renderSnapConfig(ctx, &charmCfg)
			if err != nil {
				return err
			}

			if err := rendered.Validate(); err != nil {
				var cfgErr *model.ConfigError
				if !errors.As(err, &cfgErr) {
					return err
				}

				for _, problem := range cfgErr.Problems {
					fmt.Printf("%s %s\n", color.RedString("✗"), model.CharmifyConfigError(problem))
				}
				return goerr.New("charm configuration is invalid",
					goerr.V("problems", len(cfgErr.Problems)))
			}

			fmt.Printf("%s charm configuration is valid\n", color.GreenString("✓"))
			return nil
		},
	}
}
