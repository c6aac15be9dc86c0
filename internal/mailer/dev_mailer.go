package mailer

import (
	"github.com/carebridge/carebridge-api/pkg/logger"
)

// DevMailer logs notifications instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendAppointmentConfirmed(toEmail, toName, hospitalName, date, timeOfDay string) error {
	logger.Info("[DEV MAIL] Appointment confirmed",
		"to", toEmail,
		"name", toName,
		"hospital", hospitalName,
		"date", date,
		"time", timeOfDay,
	)
	return nil
}

func (d *DevMailer) SendAppointmentCancelled(toEmail, toName, hospitalName, date, timeOfDay string) error {
	logger.Info("[DEV MAIL] Appointment cancelled",
		"to", toEmail,
		"name", toName,
		"hospital", hospitalName,
		"date", date,
		"time", timeOfDay,
	)
	return nil
}
