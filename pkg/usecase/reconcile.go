package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/charmkit/pje-agent/pkg/domain/interfaces"
	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// metricsPath is where the exporter serves its metrics
const metricsPath = "/metrics"

// Reconciler drives the exporter service towards the state described by
// the charm configuration. It implements interfaces.HookUseCase.
type Reconciler struct {
	charmConfigPath string
	unit            interfaces.UnitTools
	svc             interfaces.ServiceManager
	agentConf       interfaces.AgentConf
	notifier        interfaces.Notifier

	mu              sync.Mutex
	lastAppliedHash string
	lastStatus      model.StatusKind
}

// ReconcilerOption configures a Reconciler
type ReconcilerOption func(*Reconciler)

// WithNotifier enables status transition notifications
func WithNotifier(n interfaces.Notifier) ReconcilerOption {
	return func(r *Reconciler) {
		r.notifier = n
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(
	charmConfigPath string,
	unit interfaces.UnitTools,
	svc interfaces.ServiceManager,
	agentConf interfaces.AgentConf,
	opts ...ReconcilerOption,
) *Reconciler {
	r := &Reconciler{
		charmConfigPath: charmConfigPath,
		unit:            unit,
		svc:             svc,
		agentConf:       agentConf,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile applies the charm configuration to the exporter service:
// render, compare against the last applied config, write and restart only
// when something actually changed, and re-publish unit-facing state
// (scrape target, opened ports, workload status).
func (r *Reconciler) Reconcile(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := ctxlog.From(ctx)
	logger.Info("processing new charm configuration")

	if err := r.setStatus(ctx, model.Maintenance("Processing new charm configuration.")); err != nil {
		return err
	}

	cfg, err := model.LoadCharmConfig(r.charmConfigPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded charm configuration", "config", cfg)

	caCert, err := r.resolveCACert(ctx, cfg)
	if err != nil {
		return err
	}

	rendered := cfg.ExporterConfig(caCert).Render()
	hash, err := rendered.Hash()
	if err != nil {
		return err
	}

	logger.Debug("exporter config hash",
		"rendered", hash,
		"applied", r.lastAppliedHash,
	)

	restart := false
	if hash != r.lastAppliedHash {
		if err := rendered.Validate(); err != nil {
			var cfgErr *model.ConfigError
			if !errors.As(err, &cfgErr) {
				return err
			}

			// Surface problems with charm option names, not snap keys
			for _, problem := range cfgErr.Problems {
				logger.Error("invalid charm configuration",
					"problem", model.CharmifyConfigError(problem),
				)
			}
			return r.setStatus(ctx, model.Blocked("Invalid configuration. Please see logs."))
		}

		data, err := rendered.Marshal()
		if err != nil {
			return err
		}
		if err := r.svc.ApplyConfig(ctx, data); err != nil {
			return err
		}

		r.lastAppliedHash = hash
		restart = true
	}

	plan := model.ExporterServicePlan()
	current, err := r.svc.CurrentPlan(ctx)
	if err != nil {
		return err
	}
	if current != plan {
		if err := r.svc.InstallPlan(ctx, plan); err != nil {
			return err
		}
		restart = true
	}

	if err := r.publishScrapeTarget(ctx, cfg); err != nil {
		return err
	}

	if err := r.reconfigurePorts(ctx, cfg.ScrapePort); err != nil {
		return err
	}

	if restart {
		if err := r.svc.Restart(ctx); err != nil {
			return goerr.Wrap(err, "failed to restart exporter service")
		}
	}

	return r.setStatus(ctx, model.Active())
}

// resolveCACert returns the CA certificate of the targeted Juju
// controller: the explicitly configured one when set, otherwise the CA of
// the controller that deploys this unit.
func (r *Reconciler) resolveCACert(ctx context.Context, cfg *model.CharmConfig) (string, error) {
	cert, set, err := cfg.ExplicitCACert()
	if err != nil {
		ctxlog.From(ctx).Error("config option 'controller-ca-cert' does not contain valid base64-encoded data")
		return "", err
	}
	if set {
		return cert, nil
	}

	return r.agentConf.CACert()
}

// publishScrapeTarget updates the scrape target on related Prometheus
// applications. The charm option carries the interval in minutes;
// Prometheus expects seconds.
func (r *Reconciler) publishScrapeTarget(ctx context.Context, cfg *model.CharmConfig) error {
	target := model.ScrapeTarget{
		Port:            cfg.ScrapePort,
		MetricsPath:     metricsPath,
		IntervalSeconds: cfg.ScrapeInterval * 60,
		TimeoutSeconds:  cfg.ScrapeTimeout,
	}

	if err := r.unit.PublishScrapeTarget(ctx, target); err != nil {
		return goerr.Wrap(err, "failed to configure prometheus scrape target")
	}
	return nil
}

// reconfigurePorts updates the ports juju shows as opened so that only
// the current scrape port remains.
func (r *Reconciler) reconfigurePorts(ctx context.Context, scrapePort int) error {
	logger := ctxlog.From(ctx)

	opened, err := r.unit.OpenedPorts(ctx)
	if err != nil {
		return err
	}

	for _, spec := range opened {
		logger.Debug("closing port", "spec", spec)
		if err := r.unit.ClosePort(ctx, spec); err != nil {
			return err
		}
	}

	logger.Debug("opening port", "port", scrapePort)
	return r.unit.OpenPort(ctx, scrapePort)
}

// setStatus records the unit workload status and notifies the operator on
// transitions into and out of blocked.
func (r *Reconciler) setStatus(ctx context.Context, status model.UnitStatus) error {
	if err := r.unit.SetStatus(ctx, status); err != nil {
		return err
	}

	// Maintenance is transient; only settled states count as transitions
	prev := r.lastStatus
	if status.Kind == model.StatusBlocked || status.Kind == model.StatusActive {
		r.lastStatus = status.Kind
	}

	if r.notifier == nil {
		return nil
	}

	var msg string
	switch {
	case status.Kind == model.StatusBlocked && prev != model.StatusBlocked:
		msg = "exporter unit is blocked: " + status.Message
	case status.Kind == model.StatusActive && prev == model.StatusBlocked:
		msg = "exporter unit recovered, back to active"
	default:
		return nil
	}

	if err := r.notifier.Notify(ctx, msg); err != nil {
		ctxlog.From(ctx).Warn("failed to send status notification", "error", err)
	}
	return nil
}
