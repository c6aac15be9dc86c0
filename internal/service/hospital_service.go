package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/internal/repository"
	"github.com/carebridge/carebridge-api/pkg/events"
	"github.com/carebridge/carebridge-api/pkg/logger"
)

// HospitalService exposes the public directory and lets a hospital manage
// its own bed inventory.
type HospitalService interface {
	List(ctx context.Context, city string, limit, offset int) ([]domain.HospitalInfo, error)
	UpdateBeds(ctx context.Context, hospitalID int64, req *domain.UpdateBedsRequest) (*domain.HospitalInfo, error)
}

type hospitalService struct {
	hospitalRepo repository.HospitalRepository
	eventBus     events.EventBus
}

func NewHospitalService(hospitalRepo repository.HospitalRepository, eventBus events.EventBus) HospitalService {
	return &hospitalService{
		hospitalRepo: hospitalRepo,
		eventBus:     eventBus,
	}
}

func (s *hospitalService) List(ctx context.Context, city string, limit, offset int) ([]domain.HospitalInfo, error) {
	hospitals, err := s.hospitalRepo.List(ctx, city, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}

	infos := make([]domain.HospitalInfo, 0, len(hospitals))
	for i := range hospitals {
		infos = append(infos, *hospitals[i].ToInfo())
	}
	return infos, nil
}

func (s *hospitalService) UpdateBeds(ctx context.Context, hospitalID int64, req *domain.UpdateBedsRequest) (*domain.HospitalInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	hospital, err := s.hospitalRepo.UpdateBeds(ctx, hospitalID, req.TotalBeds, req.OccupiedBeds)
	if err != nil {
		return nil, err
	}

	event := events.BedsUpdatedEvent{
		HospitalID:    hospital.ID,
		TotalBeds:     hospital.TotalBeds,
		OccupiedBeds:  hospital.OccupiedBeds,
		AvailableBeds: hospital.AvailableBeds(),
		UpdatedAt:     time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.BedsUpdated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish beds updated event", "error", err, "hospital_id", hospital.ID)
	}

	return hospital.ToInfo(), nil
}
