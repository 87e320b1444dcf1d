package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmkit/pje-agent/pkg/usecase"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdCI() *cli.Command {
	return &cli.Command{
		Name:  "ci",
		Usage: "Work with the repository's CI workflow definitions",
		Commands: []*cli.Command{
			cmdCIValidate(),
			cmdCIRender(),
		},
	}
}

func cmdCIValidate() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check workflow files against the charm CI policy",
		ArgsUsage: "<workflow.yaml...>",
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return goerr.New("at least one workflow file is required")
			}

			checker := usecase.NewWorkflowChecker()
			failed := 0

			for _, file := range files {
				data, err := os.ReadFile(file)
				if err != nil {
					return goerr.Wrap(err, "failed to read workflow file", goerr.V("file", file))
				}

				problems := checker.Check(ctx, file, data)
				if len(problems) == 0 {
					fmt.Printf("%s %s\n", color.GreenString("✓"), file)
					continue
				}

				failed++
				fmt.Printf("%s %s\n", color.RedString("✗"), file)
				for _, problem := range problems {
					fmt.Printf("    %s\n", problem)
				}
			}

			if failed > 0 {
				return goerr.New("workflow validation failed", goerr.V("files", failed))
			}
			return nil
		},
	}
}

func cmdCIRender() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Print the canonical check workflow",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := fmt.Print(usecase.DefaultWorkflowYAML)
			return err
		},
	}
}
