package interfaces

import (
	"context"

	"github.com/charmkit/pje-agent/pkg/domain/model"
)

// HookUseCase defines the interface for unit hook event processing
type HookUseCase interface {
	// ProcessHook processes a unit hook event
	ProcessHook(ctx context.Context, event *model.HookEvent) error
}
