package types

// SyncTrigger identifies what asked for an applicant refresh
type SyncTrigger string

const (
	SyncTriggerInitial  SyncTrigger = "initial"
	SyncTriggerInterval SyncTrigger = "interval"
	SyncTriggerEvent    SyncTrigger = "event"
	SyncTriggerFocus    SyncTrigger = "focus"
	SyncTriggerManual   SyncTrigger = "manual"
	// SyncTriggerReconcile follows a local mutation, successful or not
	SyncTriggerReconcile SyncTrigger = "reconcile"
)

func (t SyncTrigger) String() string {
	return string(t)
}

// IsManual reports whether the refresh was requested by a user and so owes
// them a toast
func (t SyncTrigger) IsManual() bool {
	return t == SyncTriggerManual
}

// Coalescable reports whether the refresh may share an in flight fetch.
// Refreshes that follow a mutation must observe it and always start a new one.
func (t SyncTrigger) Coalescable() bool {
	switch t {
	case SyncTriggerInterval, SyncTriggerEvent, SyncTriggerFocus, SyncTriggerInitial:
		return true
	default:
		return false
	}
}
