// Package lifecycle defines the service-request status state machine. Every
// legal transition is declared once in the table below; repositories enforce
// the same preconditions with status-guarded conditional updates.
package lifecycle

// Service request statuses.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

var transitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusAccepted:  {},
		StatusRejected:  {},
		StatusCancelled: {},
	},
	StatusAccepted: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusRejected:  {},
}

// CanTransition reports whether a request may move from one status to
// another. Same-status "transitions" are not legal; a second accept must fail.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminal reports whether no forward transition is permitted from status.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled || status == StatusRejected
}

// Valid reports whether status is a known state.
func Valid(status string) bool {
	_, ok := transitions[status]
	return ok
}

// Deletable reports whether a request in this status may be hard-deleted.
// Completed requests are kept: they anchor ratings and complaints.
func Deletable(status string) bool {
	return status == StatusRejected || status == StatusCancelled
}

// Annotatable reports whether a rating or complaint may be recorded. Both
// gate on accepted rather than completed, so a request is rated before the
// work is confirmed finished and the window closes at completion.
func Annotatable(status string) bool {
	return status == StatusAccepted
}
