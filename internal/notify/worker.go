package notify

import (
	"encoding/json"

	"github.com/carebridge/carebridge-api/internal/mailer"
	"github.com/carebridge/carebridge-api/pkg/events"
	"github.com/carebridge/carebridge-api/pkg/logger"
)

// Worker consumes appointment lifecycle events and emails the patient.
// Delivery failures are logged, never retried; a missed notification must
// not affect the appointment itself.
type Worker struct {
	bus    events.EventBus
	mailer mailer.Service
}

func NewWorker(bus events.EventBus, mailer mailer.Service) *Worker {
	return &Worker{bus: bus, mailer: mailer}
}

// Start registers queue subscriptions so only one instance handles each
// event when the service is scaled out.
func (w *Worker) Start() error {
	if err := w.bus.QueueSubscribe(events.AppointmentConfirmed, "notify", w.handleConfirmed); err != nil {
		return err
	}
	return w.bus.QueueSubscribe(events.AppointmentCancelled, "notify", w.handleCancelled)
}

func (w *Worker) handleConfirmed(msg *events.Message) {
	var event events.AppointmentConfirmedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode appointment confirmed event", "error", err)
		return
	}

	if err := w.mailer.SendAppointmentConfirmed(
		event.PatientEmail, event.PatientName, event.HospitalName, event.Date, event.Time,
	); err != nil {
		logger.Error("Failed to send confirmation email",
			"error", err,
			"appointment_id", event.AppointmentID,
			"to", event.PatientEmail,
		)
	}
}

func (w *Worker) handleCancelled(msg *events.Message) {
	var event events.AppointmentCancelledEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode appointment cancelled event", "error", err)
		return
	}

	if err := w.mailer.SendAppointmentCancelled(
		event.PatientEmail, event.PatientName, event.HospitalName, event.Date, event.Time,
	); err != nil {
		logger.Error("Failed to send cancellation email",
			"error", err,
			"appointment_id", event.AppointmentID,
			"to", event.PatientEmail,
		)
	}
}
