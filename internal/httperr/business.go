package httperr

import (
	"errors"
	"fmt"
	"time"
)

// Business error codes raised by the booking core. Every precondition
// violation gets its own code so clients can show an actionable message
// instead of a generic "booking failed".
const (
	CodeInvalidDate           = "invalid_date"
	CodeInvalidService        = "invalid_service"
	CodeBarberUnavailable     = "barber_unavailable"
	CodeLeadTimeViolation     = "lead_time_violation"
	CodeAdvanceWindowExceeded = "advance_window_violation"
	CodeOutsideBusinessHours  = "outside_business_hours"
	CodeSlotConflict          = "slot_conflict"
	CodeNoAvailability        = "no_availability"
	CodeInvalidTransition     = "invalid_transition"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	var sc SlotConflictError
	if errors.As(err, &sc) {
		return code == CodeSlotConflict
	}
	return false
}

// SlotConflictError names the appointment already holding the slot so the
// caller can offer a nearest alternative.
type SlotConflictError struct {
	ConflictingID    uint
	ConflictingStart time.Time
}

func (e SlotConflictError) Error() string {
	return fmt.Sprintf("%s: taken at %s", CodeSlotConflict, e.ConflictingStart.Format(time.RFC3339))
}

// RuleViolationError carries the rule engine's violation list verbatim.
type RuleViolationError struct {
	Violations []string
}

func (e RuleViolationError) Error() string {
	return "rule_violation"
}
