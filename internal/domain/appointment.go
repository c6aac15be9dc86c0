package domain

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

// Appointment is the booking record. BedReserved tracks whether confirming
// this appointment took a bed from the hospital's inventory, so cancelling
// knows whether to give one back.
type Appointment struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	HospitalID  int64             `json:"hospital_id"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	BedReserved bool              `json:"bed_reserved"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Pending is the only state transitions are defined out of; the
// hospital-side cancel of a confirmed appointment is the one exception.
func (a *Appointment) CanConfirm() bool {
	return a.Status == AppointmentPending
}

func (a *Appointment) CanCancel() bool {
	return a.Status == AppointmentPending || a.Status == AppointmentConfirmed
}

func (a *Appointment) IsOwnedByHospital(hospitalID int64) bool {
	return a.HospitalID == hospitalID
}

// UserAppointment is an appointment as the patient sees it, denormalized
// with the hospital's identity.
type UserAppointment struct {
	Appointment
	HospitalName    string `json:"hospital_name"`
	HospitalAddress string `json:"hospital_address"`
	HospitalCity    string `json:"hospital_city"`
}

// HospitalAppointment is an appointment as the hospital sees it,
// denormalized with the patient's identity.
type HospitalAppointment struct {
	Appointment
	PatientName    string `json:"patient_name"`
	PatientContact string `json:"patient_contact"`
}

type AppointmentCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

type BookAppointmentRequest struct {
	HospitalID int64  `json:"hospital_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func (r *BookAppointmentRequest) Validate() error {
	if r.HospitalID <= 0 {
		return fmt.Errorf("hospital_id is required")
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse(timeLayout, r.Time); err != nil {
		return fmt.Errorf("time must be in HH:MM format")
	}
	// The past-date cutoff is the current UTC day; lexicographic compare
	// works because both sides are YYYY-MM-DD.
	if r.Date < time.Now().UTC().Format(dateLayout) {
		return fmt.Errorf("date must not be in the past")
	}
	return nil
}
