package usecase

import (
	"context"

	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
)

// ProcessHook processes a unit hook event. Install-like hooks make sure
// the snap is present before reconfiguring; upgrade-charm behaves like
// config-changed because a new revision may ship a new snap.
func (r *Reconciler) ProcessHook(ctx context.Context, event *model.HookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("processing hook event",
		"id", event.ID,
		"kind", event.Kind,
		"supported", event.IsSupported(),
	)

	switch event.Kind {
	case model.HookInstall, model.HookUpgradeCharm:
		if err := r.svc.EnsureInstalled(ctx); err != nil {
			return err
		}
		return r.Reconcile(ctx)

	case model.HookConfigChanged, model.HookUpdateStatus:
		return r.Reconcile(ctx)

	case model.HookStop:
		return r.stop(ctx)

	default:
		logger.Warn("unsupported hook event received", "kind", event.Kind)
		return nil
	}
}

func (r *Reconciler) stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.setStatus(ctx, model.Maintenance("Stopping exporter service.")); err != nil {
		return err
	}
	return r.svc.Stop(ctx)
}
