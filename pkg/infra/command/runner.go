package command

import (
	"context"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Runner executes external commands. Hook tools and snap management go
// through this interface so that use cases can be tested without a Juju
// unit environment.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if name == "" {
		return "", goerr.New("command name can not be empty")
	}

	cmd := exec.CommandContext(ctx, name, args...)
	ctxlog.From(ctx).Debug("running command", "cmd", cmd.String())

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", goerr.Wrap(err, "command failed",
			goerr.V("cmd", name),
			goerr.V("args", args),
			goerr.V("output", strings.TrimSpace(string(out))),
		)
	}

	return string(out), nil
}
