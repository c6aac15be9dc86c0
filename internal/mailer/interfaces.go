package mailer

// Service delivers patient-facing appointment notifications.
type Service interface {
	SendAppointmentConfirmed(toEmail, toName, hospitalName, date, timeOfDay string) error
	SendAppointmentCancelled(toEmail, toName, hospitalName, date, timeOfDay string) error
}
