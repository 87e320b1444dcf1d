package model

// StatusKind is a unit workload status value as understood by the
// status-set hook tool.
type StatusKind string

const (
	StatusMaintenance StatusKind = "maintenance"
	StatusBlocked     StatusKind = "blocked"
	StatusWaiting     StatusKind = "waiting"
	StatusActive      StatusKind = "active"
)

// UnitStatus is a workload status paired with an operator-facing message
type UnitStatus struct {
	Kind    StatusKind
	Message string
}

func Maintenance(msg string) UnitStatus { return UnitStatus{Kind: StatusMaintenance, Message: msg} }
func Blocked(msg string) UnitStatus     { return UnitStatus{Kind: StatusBlocked, Message: msg} }
func Active() UnitStatus                { return UnitStatus{Kind: StatusActive} }
