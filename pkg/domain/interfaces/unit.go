package interfaces

import (
	"context"

	"github.com/charmkit/pje-agent/pkg/domain/model"
)

// UnitTools covers the unit-facing side effects performed through Juju
// hook tools (status-set, open-port, relation-set and friends).
type UnitTools interface {
	// SetStatus sets the unit workload status
	SetStatus(ctx context.Context, status model.UnitStatus) error
	// OpenedPorts lists currently opened port specs, e.g. "9275/tcp"
	OpenedPorts(ctx context.Context) ([]string, error)
	// OpenPort opens a TCP port on the unit
	OpenPort(ctx context.Context, port int) error
	// ClosePort closes a previously opened port spec
	ClosePort(ctx context.Context, spec string) error
	// PublishScrapeTarget exposes the scrape target on every
	// prometheus-scrape relation. It is a no-op without relations.
	PublishScrapeTarget(ctx context.Context, target model.ScrapeTarget) error
}

// ServiceManager manages the exporter snap and its service.
type ServiceManager interface {
	// EnsureInstalled installs the exporter snap if it is not present
	EnsureInstalled(ctx context.Context) error
	// ApplyConfig writes the rendered exporter config file
	ApplyConfig(ctx context.Context, data []byte) error
	// CurrentPlan returns the currently installed service plan. A zero
	// plan is returned when no plan has been installed yet.
	CurrentPlan(ctx context.Context) (model.ServicePlan, error)
	// InstallPlan records the desired service plan
	InstallPlan(ctx context.Context, plan model.ServicePlan) error
	// Restart restarts the exporter service
	Restart(ctx context.Context) error
	// Stop stops the exporter service
	Stop(ctx context.Context) error
}

// AgentConf reads values from the unit's Juju agent configuration.
type AgentConf interface {
	// CACert returns the CA certificate of the controller that deployed
	// this unit
	CACert() (string, error)
}

// Notifier delivers operator notifications on status transitions.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
