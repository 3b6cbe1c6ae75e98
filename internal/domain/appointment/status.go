package appointment

import "github.com/salonworks/booking-api/internal/httperr"

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition validates a requested status change. Any move between
// non-terminal states is allowed; terminal states are frozen.
func CanTransition(current, next Status) error {
	if !ValidStatus(next) {
		return httperr.ErrBusiness("invalid_status")
	}
	if IsTerminal(current) {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}

// BlocksSlot reports whether an appointment in this status occupies
// the stylist's calendar for conflict checks.
func BlocksSlot(s Status) bool {
	return s == StatusConfirmed || s == StatusInProgress
}
