package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/internal/service"
	"github.com/carebridge/carebridge-api/pkg/auth"
	"github.com/carebridge/carebridge-api/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: time.Hour,
		},
	}
}

func newAuthFixture() (service.AuthService, *mockUserRepo, *mockHospitalRepo, *mockAppointmentRepo) {
	users := newMockUserRepo()
	hospitals := newMockHospitalRepo()
	appointments := newMockAppointmentRepo(hospitals)
	return service.NewAuthService(users, hospitals, appointments, testConfig()), users, hospitals, appointments
}

func userRequest() *domain.CreateUserRequest {
	return &domain.CreateUserRequest{
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Password:      "hunter22",
		ContactNumber: "9876543210",
	}
}

func hospitalRequest() *domain.CreateHospitalRequest {
	return &domain.CreateHospitalRequest{
		Name:          "City General",
		Address:       "12 Harbor Street",
		City:          "Oslo",
		ContactNumber: "9876543210",
		Email:         "ward@city.example",
		Password:      "hunter22",
		TotalBeds:     40,
		OccupiedBeds:  10,
	}
}

func TestRegisterUser(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	user, err := svc.RegisterUser(context.Background(), userRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "asha@example.com" {
		t.Errorf("email = %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "hunter22" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	if _, err := svc.RegisterUser(context.Background(), userRequest()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	req := userRequest()
	req.Email = "ASHA@example.com" // emails compare case-insensitively
	_, err := svc.RegisterUser(context.Background(), req)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterUserInvalid(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	req := userRequest()
	req.Password = "abc"
	if _, err := svc.RegisterUser(context.Background(), req); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoginUser(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	if _, err := svc.RegisterUser(context.Background(), userRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.LoginUser(context.Background(), &domain.LoginRequest{
		Email:    "asha@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != auth.RolePatient {
		t.Errorf("role = %q, want %q", resp.Role, auth.RolePatient)
	}

	claims, err := auth.Parse(resp.Token, "test-secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != auth.RolePatient {
		t.Errorf("token role = %q, want %q", claims.Role, auth.RolePatient)
	}
	if claims.Email != "asha@example.com" {
		t.Errorf("token email = %q", claims.Email)
	}
}

func TestLoginUserWrongPassword(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	if _, err := svc.RegisterUser(context.Background(), userRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.LoginUser(context.Background(), &domain.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUserUnknownEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, err := svc.LoginUser(context.Background(), &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterAndLoginHospital(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	hospital, err := svc.RegisterHospital(context.Background(), hospitalRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if hospital.AvailableBeds() != 30 {
		t.Errorf("available beds = %d, want 30", hospital.AvailableBeds())
	}

	resp, err := svc.LoginHospital(context.Background(), &domain.LoginRequest{
		Email:    "ward@city.example",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != auth.RoleHospital {
		t.Errorf("role = %q, want %q", resp.Role, auth.RoleHospital)
	}

	claims, err := auth.Parse(resp.Token, "test-secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != auth.RoleHospital {
		t.Errorf("token role = %q, want %q", claims.Role, auth.RoleHospital)
	}
}

func TestGetUserProfileCounts(t *testing.T) {
	svc, users, hospitals, appointments := newAuthFixture()

	user, _ := users.Create(context.Background(), userRequest(), "hash")
	hospital := hospitals.add(&domain.Hospital{Name: "City General", TotalBeds: 5})

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	for i := 0; i < 3; i++ {
		a, _ := appointments.Create(context.Background(), user.ID, &domain.BookAppointmentRequest{
			HospitalID: hospital.ID, Date: tomorrow, Time: "09:00",
		})
		if i == 0 {
			if _, err := appointments.ConfirmPending(context.Background(), a.ID); err != nil {
				t.Fatalf("confirm: %v", err)
			}
		}
	}

	profile, err := svc.GetUserProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Appointments.Total != 3 {
		t.Errorf("total = %d, want 3", profile.Appointments.Total)
	}
	if profile.Appointments.Confirmed != 1 {
		t.Errorf("confirmed = %d, want 1", profile.Appointments.Confirmed)
	}
	if profile.Appointments.Pending != 2 {
		t.Errorf("pending = %d, want 2", profile.Appointments.Pending)
	}
}

func TestGetUserProfileNotFound(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, err := svc.GetUserProfile(context.Background(), 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
