package appointment

import "github.com/trimworks/booking-api/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Transitions are monotonic: scheduled/pending -> confirmed -> completed,
// or any non-terminal -> cancelled. Cancelled and completed are terminal.

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

func CanConfirm(current Status) error {
	if current != StatusScheduled && current != StatusPending {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}

func CanCancel(current Status) error {
	switch current {
	case StatusScheduled, StatusPending, StatusConfirmed:
		return nil
	}
	return httperr.ErrBusiness(httperr.CodeInvalidTransition)
}

// CanReschedule mirrors CanCancel: terminal appointments are immutable.
func CanReschedule(current Status) error {
	return CanCancel(current)
}

func InitialStatus() Status {
	return StatusScheduled
}
