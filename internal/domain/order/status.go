package order

import "github.com/salonworks/booking-api/internal/httperr"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPaid,
		StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// next holds the single forward step of the lifecycle. Cancellation is
// handled separately since it is reachable from any non-terminal state.
var next = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPaid,
	StatusPaid:      StatusCompleted,
}

// CanTransition validates pending -> confirmed -> paid -> completed,
// with cancelled allowed from any non-terminal state.
func CanTransition(current, target Status) error {
	if !ValidStatus(target) {
		return httperr.ErrBusiness("invalid_status")
	}
	if IsTerminal(current) {
		return httperr.ErrBusiness("invalid_state")
	}
	if target == StatusCancelled {
		return nil
	}
	if next[current] != target {
		return httperr.ErrBusiness("invalid_transition")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
