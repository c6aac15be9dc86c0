package service_test

import (
	"context"
	"strings"
	"time"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/pkg/events"
)

// ---------- Mocks ----------

type publishedEvent struct {
	subject string
	data    any
}

type mockEventBus struct {
	published  []publishedEvent
	publishErr error
}

func (m *mockEventBus) Publish(_ context.Context, subject string, data interface{}) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishedEvent{subject: subject, data: data})
	return nil
}

func (m *mockEventBus) Subscribe(string, func(*events.Message)) error { return nil }
func (m *mockEventBus) QueueSubscribe(string, string, func(*events.Message)) error {
	return nil
}
func (m *mockEventBus) Close() error { return nil }

func (m *mockEventBus) subjects() []string {
	out := make([]string, 0, len(m.published))
	for _, e := range m.published {
		out = append(out, e.subject)
	}
	return out
}

type mockUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, req *domain.CreateUserRequest, passwordHash string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == req.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	u := &domain.User{
		ID:            m.nextID,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.users[u.ID] = u
	m.nextID++
	return u, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	return m.users[id], nil
}

type mockHospitalRepo struct {
	nextID    int64
	hospitals map[int64]*domain.Hospital
}

func newMockHospitalRepo() *mockHospitalRepo {
	return &mockHospitalRepo{nextID: 1, hospitals: make(map[int64]*domain.Hospital)}
}

func (m *mockHospitalRepo) add(h *domain.Hospital) *domain.Hospital {
	h.ID = m.nextID
	m.nextID++
	m.hospitals[h.ID] = h
	return h
}

func (m *mockHospitalRepo) Create(_ context.Context, req *domain.CreateHospitalRequest, passwordHash string) (*domain.Hospital, error) {
	for _, h := range m.hospitals {
		if h.Email == req.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	return m.add(&domain.Hospital{
		Email:         req.Email,
		PasswordHash:  passwordHash,
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		ContactNumber: req.ContactNumber,
		TotalBeds:     req.TotalBeds,
		OccupiedBeds:  req.OccupiedBeds,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}), nil
}

func (m *mockHospitalRepo) FindByEmail(_ context.Context, email string) (*domain.Hospital, error) {
	for _, h := range m.hospitals {
		if strings.EqualFold(h.Email, email) {
			return h, nil
		}
	}
	return nil, nil
}

func (m *mockHospitalRepo) FindByID(_ context.Context, id int64) (*domain.Hospital, error) {
	return m.hospitals[id], nil
}

func (m *mockHospitalRepo) List(_ context.Context, city string, _, _ int) ([]domain.Hospital, error) {
	var out []domain.Hospital
	for _, h := range m.hospitals {
		if city == "" || strings.EqualFold(h.City, city) {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *mockHospitalRepo) UpdateBeds(_ context.Context, id int64, totalBeds, occupiedBeds int) (*domain.Hospital, error) {
	h, ok := m.hospitals[id]
	if !ok || occupiedBeds < 0 || occupiedBeds > totalBeds {
		return nil, domain.ErrNotFound
	}
	h.TotalBeds = totalBeds
	h.OccupiedBeds = occupiedBeds
	h.UpdatedAt = time.Now()
	return h, nil
}

// mockAppointmentRepo mirrors the transactional semantics of the real
// repository: confirming takes a bed from the hospital table, cancelling
// gives it back when one was reserved.
type mockAppointmentRepo struct {
	nextID       int64
	appointments map[int64]*domain.Appointment
	hospitals    *mockHospitalRepo
}

func newMockAppointmentRepo(hospitals *mockHospitalRepo) *mockAppointmentRepo {
	return &mockAppointmentRepo{
		nextID:       1,
		appointments: make(map[int64]*domain.Appointment),
		hospitals:    hospitals,
	}
}

func (m *mockAppointmentRepo) Create(_ context.Context, userID int64, req *domain.BookAppointmentRequest) (*domain.Appointment, error) {
	a := &domain.Appointment{
		ID:         m.nextID,
		UserID:     userID,
		HospitalID: req.HospitalID,
		Date:       req.Date,
		Time:       req.Time,
		Status:     domain.AppointmentPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.appointments[a.ID] = a
	m.nextID++
	return a, nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	return m.appointments[id], nil
}

func (m *mockAppointmentRepo) ListForUser(_ context.Context, userID int64, _, _ int) ([]domain.UserAppointment, error) {
	var out []domain.UserAppointment
	for _, a := range m.appointments {
		if a.UserID == userID {
			out = append(out, domain.UserAppointment{Appointment: *a})
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) ListForHospital(_ context.Context, hospitalID int64, status *domain.AppointmentStatus, _ string, _, _ int) ([]domain.HospitalAppointment, error) {
	var out []domain.HospitalAppointment
	for _, a := range m.appointments {
		if a.HospitalID != hospitalID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, domain.HospitalAppointment{Appointment: *a})
	}
	return out, nil
}

func (m *mockAppointmentRepo) CountForUser(_ context.Context, userID int64) (domain.AppointmentCounts, error) {
	var c domain.AppointmentCounts
	for _, a := range m.appointments {
		if a.UserID != userID {
			continue
		}
		c.Total++
		switch a.Status {
		case domain.AppointmentPending:
			c.Pending++
		case domain.AppointmentConfirmed:
			c.Confirmed++
		case domain.AppointmentCancelled:
			c.Cancelled++
		}
	}
	return c, nil
}

func (m *mockAppointmentRepo) ConfirmPending(_ context.Context, id int64) (*domain.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !a.CanConfirm() {
		return nil, domain.ErrNotPending
	}
	h := m.hospitals.hospitals[a.HospitalID]
	if h == nil || h.OccupiedBeds >= h.TotalBeds {
		return nil, domain.ErrNoBedsAvailable
	}
	h.OccupiedBeds++
	a.Status = domain.AppointmentConfirmed
	a.BedReserved = true
	a.UpdatedAt = time.Now()
	return a, nil
}

func (m *mockAppointmentRepo) Cancel(_ context.Context, id int64) (*domain.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !a.CanCancel() {
		return nil, domain.ErrAlreadyCancelled
	}
	if a.BedReserved {
		if h := m.hospitals.hospitals[a.HospitalID]; h != nil && h.OccupiedBeds > 0 {
			h.OccupiedBeds--
		}
	}
	a.Status = domain.AppointmentCancelled
	a.BedReserved = false
	a.UpdatedAt = time.Now()
	return a, nil
}
