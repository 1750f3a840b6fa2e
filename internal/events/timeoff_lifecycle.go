package events

import "time"

const TimeOffLifecycleTopic = "hr.timeoff.lifecycle.v1"

const (
	EventTimeOffRequested = "time_off.requested"
	EventTimeOffApproved  = "time_off.approved"
	EventTimeOffRejected  = "time_off.rejected"
	EventTimeOffCancelled = "time_off.cancelled"
)

// TimeOffLifecycleEvent is published after a lifecycle transition commits.
// RecipientID is who should be told about it: the approver for a new
// request, the employee for a decision.
type TimeOffLifecycleEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id"`
	Reference      string    `json:"reference"`
	OrganizationID string    `json:"organization_id"`
	EmployeeID     string    `json:"employee_id"`
	RecipientID    string    `json:"recipient_id"`
	ActorID        string    `json:"actor_id"`
	Status         string    `json:"status"`
	Period         int       `json:"period"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TouchesBalance reports whether the event changed the employee's ledger.
func (e TimeOffLifecycleEvent) TouchesBalance() bool {
	return e.EventType == EventTimeOffApproved || e.EventType == EventTimeOffCancelled
}
