package juju

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// DefaultAgentConfPath is where the unit agent keeps its configuration.
const DefaultAgentConfPath = "/var/lib/juju/agent.conf"

// AgentConf reads the Juju unit agent configuration file.
type AgentConf struct {
	path string
}

// NewAgentConf creates a reader for the given agent.conf path.
func NewAgentConf(path string) *AgentConf {
	if path == "" {
		path = DefaultAgentConfPath
	}
	return &AgentConf{path: path}
}

// CACert returns the CA certificate of the controller that deploys this
// unit.
func (a *AgentConf) CACert() (string, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read agent.conf", goerr.V("path", a.path))
	}

	var conf struct {
		CACert string `yaml:"cacert"`
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return "", goerr.Wrap(err, "failed to parse agent.conf", goerr.V("path", a.path))
	}

	if conf.CACert == "" {
		return "", goerr.New("failed to fetch controller's CA certificate from agent.conf")
	}
	return conf.CACert, nil
}
