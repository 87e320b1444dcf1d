package model

import "time"

// HookKind represents the kind of unit hook event being processed
type HookKind string

const (
	HookInstall       HookKind = "install"
	HookConfigChanged HookKind = "config-changed"
	HookUpgradeCharm  HookKind = "upgrade-charm"
	HookUpdateStatus  HookKind = "update-status"
	HookStop          HookKind = "stop"
	HookUnknown       HookKind = "unknown"
)

// ParseHookKind maps a hook name to a HookKind, returning HookUnknown
// for names the agent does not handle.
func ParseHookKind(name string) HookKind {
	switch HookKind(name) {
	case HookInstall, HookConfigChanged, HookUpgradeCharm, HookUpdateStatus, HookStop:
		return HookKind(name)
	default:
		return HookUnknown
	}
}

// HookEvent represents a single unit hook delivery
type HookEvent struct {
	ID         string    // Unique delivery ID
	Kind       HookKind  // Hook name (e.g. config-changed)
	ReceivedAt time.Time // Time when the event was received
	RawPayload []byte    // Raw payload, if delivered over HTTP
}

// IsSupported checks if the event is handled by the agent
func (e *HookEvent) IsSupported() bool {
	return e.Kind != HookUnknown && e.Kind != ""
}
