package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contact_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contact_number"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expires_in"`
	User      any    `json:"user,omitempty"`
	Hospital  any    `json:"hospital,omitempty"`
}

// UserProfile is the /user/profile payload: the account plus appointment
// counts by status.
type UserProfile struct {
	User
	Appointments AppointmentCounts `json:"appointments"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
}

func (r *CreateUserRequest) Validate() error {
	if len(r.Name) < 3 {
		return fmt.Errorf("name must be at least 3 characters")
	}
	if !emailRe.MatchString(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if !phoneRe.MatchString(r.ContactNumber) {
		return fmt.Errorf("contact number must be 10 digits")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if !emailRe.MatchString(r.Email) {
		return fmt.Errorf("invalid email address")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
