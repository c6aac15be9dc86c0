package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/internal/repository"
	"github.com/carebridge/carebridge-api/pkg/auth"
	"github.com/carebridge/carebridge-api/pkg/config"
)

// AuthService registers and authenticates both account types. Patients and
// hospitals live in separate tables but share the token format.
type AuthService interface {
	RegisterUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	LoginUser(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	RegisterHospital(ctx context.Context, req *domain.CreateHospitalRequest) (*domain.Hospital, error)
	LoginHospital(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	GetUserProfile(ctx context.Context, userID int64) (*domain.UserProfile, error)
	GetHospitalProfile(ctx context.Context, hospitalID int64) (*domain.HospitalInfo, error)
}

type authService struct {
	userRepo        repository.UserRepository
	hospitalRepo    repository.HospitalRepository
	appointmentRepo repository.AppointmentRepository
	config          *config.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	hospitalRepo repository.HospitalRepository,
	appointmentRepo repository.AppointmentRepository,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		hospitalRepo:    hospitalRepo,
		appointmentRepo: appointmentRepo,
		config:          config,
	}
}

func (s *authService) RegisterUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *authService) LoginUser(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(user.ID, user.Email, auth.RolePatient,
		s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		Token:     token,
		Role:      auth.RolePatient,
		ExpiresIn: int64(s.config.Auth.AccessTokenTTL.Seconds()),
		User:      user,
	}, nil
}

func (s *authService) RegisterHospital(ctx context.Context, req *domain.CreateHospitalRequest) (*domain.Hospital, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.hospitalRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing hospital: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hospital, err := s.hospitalRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create hospital: %w", err)
	}

	return hospital, nil
}

func (s *authService) LoginHospital(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	hospital, err := s.hospitalRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find hospital: %w", err)
	}
	if hospital == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, hospital.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(hospital.ID, hospital.Email, auth.RoleHospital,
		s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.LoginResponse{
		Token:     token,
		Role:      auth.RoleHospital,
		ExpiresIn: int64(s.config.Auth.AccessTokenTTL.Seconds()),
		Hospital:  hospital.ToInfo(),
	}, nil
}

func (s *authService) GetUserProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	counts, err := s.appointmentRepo.CountForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	return &domain.UserProfile{User: *user, Appointments: counts}, nil
}

func (s *authService) GetHospitalProfile(ctx context.Context, hospitalID int64) (*domain.HospitalInfo, error) {
	hospital, err := s.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	if hospital == nil {
		return nil, domain.ErrNotFound
	}
	return hospital.ToInfo(), nil
}
