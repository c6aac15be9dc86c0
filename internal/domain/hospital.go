package domain

import (
	"fmt"
	"strings"
	"time"
)

// Hospital carries its bed inventory. available_beds is derived from
// total_beds - occupied_beds and never stored.
type Hospital struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	ContactNumber string    `json:"contact_number"`
	TotalBeds     int       `json:"total_beds"`
	OccupiedBeds  int       `json:"occupied_beds"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (h *Hospital) AvailableBeds() int {
	return h.TotalBeds - h.OccupiedBeds
}

// HospitalInfo is the public shape: inventory exposed with the derived
// availability, password never included.
type HospitalInfo struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ContactNumber string `json:"contact_number"`
	TotalBeds     int    `json:"total_beds"`
	OccupiedBeds  int    `json:"occupied_beds"`
	AvailableBeds int    `json:"available_beds"`
}

func (h *Hospital) ToInfo() *HospitalInfo {
	return &HospitalInfo{
		ID:            h.ID,
		Email:         h.Email,
		Name:          h.Name,
		Address:       h.Address,
		City:          h.City,
		ContactNumber: h.ContactNumber,
		TotalBeds:     h.TotalBeds,
		OccupiedBeds:  h.OccupiedBeds,
		AvailableBeds: h.AvailableBeds(),
	}
}

type CreateHospitalRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	TotalBeds     int    `json:"total_beds"`
	OccupiedBeds  int    `json:"occupied_beds"`
}

func (r *CreateHospitalRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
}

func (r *CreateHospitalRequest) Validate() error {
	if len(r.Name) < 3 {
		return fmt.Errorf("hospital name must be at least 3 characters")
	}
	if len(r.Address) < 5 {
		return fmt.Errorf("address must be at least 5 characters")
	}
	if len(r.City) < 2 {
		return fmt.Errorf("city must be at least 2 characters")
	}
	if !phoneRe.MatchString(r.ContactNumber) {
		return fmt.Errorf("contact number must be 10 digits")
	}
	if !emailRe.MatchString(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if r.TotalBeds < 1 {
		return fmt.Errorf("total beds must be at least 1")
	}
	if r.OccupiedBeds < 0 {
		return fmt.Errorf("occupied beds cannot be negative")
	}
	if r.OccupiedBeds > r.TotalBeds {
		return fmt.Errorf("occupied beds cannot exceed total beds")
	}
	return nil
}

// UpdateBedsRequest lets a hospital adjust its inventory outside the
// appointment flow (ward intake, discharges).
type UpdateBedsRequest struct {
	TotalBeds    int `json:"total_beds"`
	OccupiedBeds int `json:"occupied_beds"`
}

func (r *UpdateBedsRequest) Validate() error {
	if r.TotalBeds < 1 {
		return fmt.Errorf("total beds must be at least 1")
	}
	if r.OccupiedBeds < 0 {
		return fmt.Errorf("occupied beds cannot be negative")
	}
	if r.OccupiedBeds > r.TotalBeds {
		return fmt.Errorf("occupied beds cannot exceed total beds")
	}
	return nil
}
