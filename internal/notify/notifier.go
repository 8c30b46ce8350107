package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/models"
)

// Notifier delivers booking notifications. Called post-commit, best
// effort: an error here never rolls back or fails a booking.
type Notifier interface {
	AppointmentBooked(ctx context.Context, ap *models.Appointment) error
	AppointmentRescheduled(ctx context.Context, ap *models.Appointment) error
	AppointmentCancelled(ctx context.Context, ap *models.Appointment) error
}

// LogNotifier is the default delivery channel until a real provider is
// wired in deployment.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) AppointmentBooked(ctx context.Context, ap *models.Appointment) error {
	n.log.Info("notify_booked",
		zap.Uint("appointment_id", ap.ID),
		zap.String("public_code", ap.PublicCode),
		zap.Time("start", ap.StartTime),
	)
	return nil
}

func (n *LogNotifier) AppointmentRescheduled(ctx context.Context, ap *models.Appointment) error {
	n.log.Info("notify_rescheduled",
		zap.Uint("appointment_id", ap.ID),
		zap.Time("start", ap.StartTime),
	)
	return nil
}

func (n *LogNotifier) AppointmentCancelled(ctx context.Context, ap *models.Appointment) error {
	n.log.Info("notify_cancelled", zap.Uint("appointment_id", ap.ID))
	return nil
}
