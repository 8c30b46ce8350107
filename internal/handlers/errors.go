package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trimworks/booking-api/internal/httperr"
)

// statusByCode maps business codes to HTTP statuses. Conflicts are 409,
// rejected-but-well-formed requests are 422, malformed input is 400.
var statusByCode = map[string]int{
	httperr.CodeInvalidDate:           http.StatusBadRequest,
	httperr.CodeInvalidService:        http.StatusUnprocessableEntity,
	httperr.CodeBarberUnavailable:     http.StatusUnprocessableEntity,
	httperr.CodeLeadTimeViolation:     http.StatusUnprocessableEntity,
	httperr.CodeAdvanceWindowExceeded: http.StatusUnprocessableEntity,
	httperr.CodeOutsideBusinessHours:  http.StatusUnprocessableEntity,
	httperr.CodeNoAvailability:        http.StatusConflict,
	httperr.CodeSlotConflict:          http.StatusConflict,
	httperr.CodeInvalidTransition:     http.StatusConflict,
	"appointment_not_found":           http.StatusNotFound,
}

var messageByCode = map[string]string{
	httperr.CodeInvalidDate:           "Invalid date or time.",
	httperr.CodeInvalidService:        "Service not found or inactive.",
	httperr.CodeBarberUnavailable:     "Professional is not available.",
	httperr.CodeLeadTimeViolation:     "Too close to the start time.",
	httperr.CodeAdvanceWindowExceeded: "Date is beyond the booking window.",
	httperr.CodeOutsideBusinessHours:  "Outside business hours.",
	httperr.CodeNoAvailability:        "No professional is free at that time.",
	httperr.CodeSlotConflict:          "Time slot already taken.",
	httperr.CodeInvalidTransition:     "Appointment cannot change to that state.",
	"appointment_not_found":           "Appointment not found.",
}

// respondBusinessError translates booking-core errors into the wire
// shape. Slot conflicts carry the holder's start time so clients can
// offer the nearest alternative; anything unrecognized is a 500.
func respondBusinessError(c *gin.Context, err error) {
	var sc httperr.SlotConflictError
	if errors.As(err, &sc) {
		c.JSON(http.StatusConflict, gin.H{
			"error_code":        httperr.CodeSlotConflict,
			"message":           messageByCode[httperr.CodeSlotConflict],
			"conflicting_start": sc.ConflictingStart,
		})
		return
	}

	var rv httperr.RuleViolationError
	if errors.As(err, &rv) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error_code": "rule_violation",
			"message":    "Booking rejected by business rules.",
			"violations": rv.Violations,
		})
		return
	}

	var be httperr.BusinessError
	if errors.As(err, &be) {
		status, ok := statusByCode[be.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		msg, ok := messageByCode[be.Code]
		if !ok {
			msg = "Request rejected."
		}
		httperr.Write(c, status, be.Code, msg)
		return
	}

	httperr.Internal(c, "internal_error", "Unexpected error.")
}
