package snap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/charmkit/pje-agent/pkg/domain/types"
	"github.com/charmkit/pje-agent/pkg/infra/command"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	planFileName   = "plan.yaml"
)

// DefaultDataDir is where the exporter snap reads its configuration from.
var DefaultDataDir = "/var/lib/" + types.SnapName

// Manager installs and supervises the prometheus-juju-exporter snap.
type Manager struct {
	runner  command.Runner
	dataDir string
}

// NewManager creates a snap manager writing under dataDir.
func NewManager(runner command.Runner, dataDir string) *Manager {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return &Manager{runner: runner, dataDir: dataDir}
}

// ConfigPath returns the path of the exporter config file.
func (m *Manager) ConfigPath() string {
	return filepath.Join(m.dataDir, configFileName)
}

// EnsureInstalled installs the exporter snap. snap install is idempotent
// for an already-installed snap.
func (m *Manager) EnsureInstalled(ctx context.Context) error {
	if _, err := m.runner.Run(ctx, "snap", "install", types.SnapName); err != nil {
		return goerr.Wrap(err, "failed to install exporter snap")
	}
	ctxlog.From(ctx).Info("exporter snap installed", "snap", types.SnapName)
	return nil
}

// ApplyConfig writes the rendered exporter configuration.
func (m *Manager) ApplyConfig(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create exporter config dir", goerr.V("dir", m.dataDir))
	}

	if err := os.WriteFile(m.ConfigPath(), data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write exporter config", goerr.V("path", m.ConfigPath()))
	}

	ctxlog.From(ctx).Info("exporter configuration updated", "path", m.ConfigPath())
	return nil
}

// CurrentPlan reads the service plan recorded by the last InstallPlan. A
// zero plan is returned when none has been installed yet.
func (m *Manager) CurrentPlan(ctx context.Context) (model.ServicePlan, error) {
	data, err := os.ReadFile(filepath.Join(m.dataDir, planFileName))
	if os.IsNotExist(err) {
		return model.ServicePlan{}, nil
	}
	if err != nil {
		return model.ServicePlan{}, goerr.Wrap(err, "failed to read service plan")
	}

	var plan model.ServicePlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return model.ServicePlan{}, goerr.Wrap(err, "failed to parse service plan")
	}
	return plan, nil
}

// InstallPlan records the desired service plan.
func (m *Manager) InstallPlan(ctx context.Context, plan model.ServicePlan) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal service plan")
	}

	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create exporter config dir", goerr.V("dir", m.dataDir))
	}

	if err := os.WriteFile(filepath.Join(m.dataDir, planFileName), data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write service plan")
	}
	return nil
}

// Restart restarts the exporter service.
func (m *Manager) Restart(ctx context.Context) error {
	if _, err := m.runner.Run(ctx, "snap", "restart", types.SnapName); err != nil {
		return goerr.Wrap(err, "failed to restart exporter service")
	}
	ctxlog.From(ctx).Info("exporter service restarted", "snap", types.SnapName)
	return nil
}

// Stop stops the exporter service.
func (m *Manager) Stop(ctx context.Context) error {
	if _, err := m.runner.Run(ctx, "snap", "stop", types.SnapName); err != nil {
		return goerr.Wrap(err, "failed to stop exporter service")
	}
	ctxlog.From(ctx).Info("exporter service stopped", "snap", types.SnapName)
	return nil
}
