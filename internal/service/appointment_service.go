package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/internal/repository"
	"github.com/carebridge/carebridge-api/pkg/events"
	"github.com/carebridge/carebridge-api/pkg/logger"
	"github.com/carebridge/carebridge-api/pkg/obs"
)

// AppointmentService drives the pending -> confirmed/cancelled lifecycle.
// Confirming reserves a bed at the owning hospital and cancelling releases
// it; both happen inside a single repository transaction.
type AppointmentService interface {
	Book(ctx context.Context, userID int64, req *domain.BookAppointmentRequest) (*domain.Appointment, error)
	Confirm(ctx context.Context, hospitalID, appointmentID int64) (*domain.Appointment, error)
	Cancel(ctx context.Context, hospitalID, appointmentID int64) (*domain.Appointment, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.UserAppointment, error)
	ListForHospital(ctx context.Context, hospitalID int64, status *domain.AppointmentStatus, search string, limit, offset int) ([]domain.HospitalAppointment, error)
}

type appointmentService struct {
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	hospitalRepo    repository.HospitalRepository
	eventBus        events.EventBus
}

func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	hospitalRepo repository.HospitalRepository,
	eventBus events.EventBus,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		hospitalRepo:    hospitalRepo,
		eventBus:        eventBus,
	}
}

func (s *appointmentService) Book(ctx context.Context, userID int64, req *domain.BookAppointmentRequest) (*domain.Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	hospital, err := s.hospitalRepo.FindByID(ctx, req.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find hospital: %w", err)
	}
	if hospital == nil {
		return nil, domain.ErrNotFound
	}

	appointment, err := s.appointmentRepo.Create(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		logger.WarnContext(ctx, "Booked appointment for unknown user", "user_id", userID, "error", err)
		return appointment, nil
	}

	event := events.AppointmentCreatedEvent{
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		HospitalID:    appointment.HospitalID,
		PatientEmail:  user.Email,
		PatientName:   user.Name,
		HospitalName:  hospital.Name,
		Date:          appointment.Date,
		Time:          appointment.Time,
		CreatedAt:     appointment.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish appointment created event", "error", err, "appointment_id", appointment.ID)
	}

	return appointment, nil
}

func (s *appointmentService) Confirm(ctx context.Context, hospitalID, appointmentID int64) (*domain.Appointment, error) {
	existing, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if !existing.IsOwnedByHospital(hospitalID) {
		return nil, domain.ErrNotOwner
	}

	// The repository re-checks the pending status under a row lock, so a
	// racing confirm loses cleanly instead of double-reserving.
	appointment, err := s.appointmentRepo.ConfirmPending(ctx, appointmentID)
	if err != nil {
		obs.CountTransition("confirm_rejected")
		return nil, err
	}
	obs.CountTransition("confirmed")

	s.publishTransition(ctx, appointment, true)
	return appointment, nil
}

func (s *appointmentService) Cancel(ctx context.Context, hospitalID, appointmentID int64) (*domain.Appointment, error) {
	existing, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if !existing.IsOwnedByHospital(hospitalID) {
		return nil, domain.ErrNotOwner
	}

	bedWasReserved := existing.BedReserved
	appointment, err := s.appointmentRepo.Cancel(ctx, appointmentID)
	if err != nil {
		obs.CountTransition("cancel_rejected")
		return nil, err
	}
	obs.CountTransition("cancelled")

	s.publishCancellation(ctx, appointment, bedWasReserved)
	return appointment, nil
}

func (s *appointmentService) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.UserAppointment, error) {
	return s.appointmentRepo.ListForUser(ctx, userID, limit, offset)
}

func (s *appointmentService) ListForHospital(ctx context.Context, hospitalID int64, status *domain.AppointmentStatus, search string, limit, offset int) ([]domain.HospitalAppointment, error) {
	return s.appointmentRepo.ListForHospital(ctx, hospitalID, status, search, limit, offset)
}

func (s *appointmentService) publishTransition(ctx context.Context, a *domain.Appointment, bedReserved bool) {
	user, hospital := s.lookupParties(ctx, a)
	if user == nil || hospital == nil {
		return
	}

	event := events.AppointmentConfirmedEvent{
		AppointmentID: a.ID,
		HospitalID:    a.HospitalID,
		PatientEmail:  user.Email,
		PatientName:   user.Name,
		HospitalName:  hospital.Name,
		Date:          a.Date,
		Time:          a.Time,
		BedReserved:   bedReserved,
		ConfirmedAt:   time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentConfirmed, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish appointment confirmed event", "error", err, "appointment_id", a.ID)
	}
}

func (s *appointmentService) publishCancellation(ctx context.Context, a *domain.Appointment, bedReleased bool) {
	user, hospital := s.lookupParties(ctx, a)
	if user == nil || hospital == nil {
		return
	}

	event := events.AppointmentCancelledEvent{
		AppointmentID: a.ID,
		HospitalID:    a.HospitalID,
		PatientEmail:  user.Email,
		PatientName:   user.Name,
		HospitalName:  hospital.Name,
		Date:          a.Date,
		Time:          a.Time,
		BedReleased:   bedReleased,
		CancelledAt:   time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCancelled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish appointment cancelled event", "error", err, "appointment_id", a.ID)
	}
}

func (s *appointmentService) lookupParties(ctx context.Context, a *domain.Appointment) (*domain.User, *domain.Hospital) {
	user, err := s.userRepo.FindByID(ctx, a.UserID)
	if err != nil || user == nil {
		logger.WarnContext(ctx, "Appointment references unknown user", "user_id", a.UserID, "error", err)
		return nil, nil
	}
	hospital, err := s.hospitalRepo.FindByID(ctx, a.HospitalID)
	if err != nil || hospital == nil {
		logger.WarnContext(ctx, "Appointment references unknown hospital", "hospital_id", a.HospitalID, "error", err)
		return nil, nil
	}
	return user, hospital
}
