package unit

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/charmkit/pje-agent/pkg/infra/command"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// scrapeRelation is the relation the scrape target is published on
const scrapeRelation = "prometheus-scrape"

// Tools drives the Juju hook tools of the local unit.
type Tools struct {
	runner command.Runner
}

// New creates hook tools backed by the given command runner.
func New(runner command.Runner) *Tools {
	return &Tools{runner: runner}
}

// SetStatus sets the unit workload status via status-set.
func (t *Tools) SetStatus(ctx context.Context, status model.UnitStatus) error {
	args := []string{string(status.Kind)}
	if status.Message != "" {
		args = append(args, status.Message)
	}
	if _, err := t.runner.Run(ctx, "status-set", args...); err != nil {
		return goerr.Wrap(err, "failed to set unit status", goerr.V("status", status.Kind))
	}
	return nil
}

// OpenedPorts returns the port specs juju currently shows as opened.
func (t *Tools) OpenedPorts(ctx context.Context) ([]string, error) {
	out, err := t.runner.Run(ctx, "opened-ports")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list opened ports")
	}

	var specs []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			specs = append(specs, line)
		}
	}
	return specs, nil
}

// OpenPort opens a TCP port on the unit.
func (t *Tools) OpenPort(ctx context.Context, port int) error {
	if _, err := t.runner.Run(ctx, "open-port", fmt.Sprintf("%d/tcp", port)); err != nil {
		return goerr.Wrap(err, "failed to open port", goerr.V("port", port))
	}
	return nil
}

// ClosePort closes an opened port spec such as "9275/tcp".
func (t *Tools) ClosePort(ctx context.Context, spec string) error {
	if _, err := t.runner.Run(ctx, "close-port", spec); err != nil {
		return goerr.Wrap(err, "failed to close port", goerr.V("spec", spec))
	}
	return nil
}

// PublishScrapeTarget writes the scrape target settings to every
// prometheus-scrape relation. Without related applications this is a
// no-op.
func (t *Tools) PublishScrapeTarget(ctx context.Context, target model.ScrapeTarget) error {
	out, err := t.runner.Run(ctx, "relation-ids", scrapeRelation)
	if err != nil {
		return goerr.Wrap(err, "failed to list scrape relations")
	}

	for _, relID := range strings.Fields(out) {
		_, err := t.runner.Run(ctx, "relation-set", "-r", relID,
			fmt.Sprintf("port=%d", target.Port),
			"metrics_path="+target.MetricsPath,
			"scrape_interval="+target.Interval(),
			"scrape_timeout="+target.Timeout(),
		)
		if err != nil {
			return goerr.Wrap(err, "failed to publish scrape target", goerr.V("relation", relID))
		}
		ctxlog.From(ctx).Debug("published scrape target",
			"relation", relID,
			"port", target.Port,
		)
	}

	return nil
}
