package config

import (
	"time"

	"github.com/charmkit/pje-agent/pkg/infra/juju"
	"github.com/charmkit/pje-agent/pkg/infra/snap"
	"github.com/urfave/cli/v3"
)

// Charm holds the paths and intervals the operator side of the agent
// works with.
type Charm struct {
	ConfigPath     string
	AgentConfPath  string
	SnapDataDir    string
	StatusInterval time.Duration
}

// Flags returns CLI flags for charm configuration
func (c *Charm) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "charm-config",
			Usage:       "Path to the charm configuration file",
			Value:       "/etc/pje-agent/config.yaml",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("PJE_CHARM_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "agent-conf",
			Usage:       "Path to the Juju unit agent.conf",
			Value:       juju.DefaultAgentConfPath,
			Destination: &c.AgentConfPath,
			Sources:     cli.EnvVars("PJE_AGENT_CONF"),
		},
		&cli.StringFlag{
			Name:        "snap-data-dir",
			Usage:       "Data directory of the exporter snap",
			Value:       snap.DefaultDataDir,
			Destination: &c.SnapDataDir,
			Sources:     cli.EnvVars("PJE_SNAP_DATA_DIR"),
		},
		&cli.DurationFlag{
			Name:        "status-interval",
			Usage:       "Interval between periodic update-status runs",
			Value:       5 * time.Minute,
			Destination: &c.StatusInterval,
			Sources:     cli.EnvVars("PJE_STATUS_INTERVAL"),
		},
	}
}
