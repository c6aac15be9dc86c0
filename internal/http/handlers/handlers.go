package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/internal/http/response"
	"github.com/carebridge/carebridge-api/internal/service"
	"github.com/carebridge/carebridge-api/pkg/auth"
	"github.com/carebridge/carebridge-api/pkg/config"
	"github.com/carebridge/carebridge-api/pkg/logger"
)

type ctxKey string

const claimsKey ctxKey = "claims"

type Handlers struct {
	authService        service.AuthService
	appointmentService service.AppointmentService
	hospitalService    service.HospitalService
	chatService        service.ChatService
	config             *config.Config
}

func New(
	authService service.AuthService,
	appointmentService service.AppointmentService,
	hospitalService service.HospitalService,
	chatService service.ChatService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		authService:        authService,
		appointmentService: appointmentService,
		hospitalService:    hospitalService,
		chatService:        chatService,
		config:             cfg,
	}
}

// RequireRole authenticates the bearer token and gates the subtree on the
// given role. A missing header is 401; a token that fails verification or
// carries the wrong role is 403.
func (h *Handlers) RequireRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				response.WriteError(w, http.StatusForbidden, "Invalid or expired token", response.CodeInvalidToken)
				return
			}

			if requiredRole != "" && claims.Role != requiredRole {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), logger.ActorIDKey, claims.Sub)
			ctx = context.WithValue(ctx, logger.ActorRoleKey, claims.Role)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

// writeDomainError maps service errors onto the HTTP taxonomy.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *service.UpstreamError

	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		response.WriteError(w, http.StatusConflict, "Email already registered", response.CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Resource not found")
	case errors.Is(err, domain.ErrNotOwner):
		response.Forbidden(w, "Appointment belongs to another hospital")
	case errors.Is(err, domain.ErrNotPending):
		response.WriteError(w, http.StatusConflict, "Appointment has already been decided", response.CodeAlreadyDecided)
	case errors.Is(err, domain.ErrAlreadyCancelled):
		response.WriteError(w, http.StatusConflict, "Appointment is already cancelled", response.CodeAlreadyDecided)
	case errors.Is(err, domain.ErrNoBedsAvailable):
		response.WriteError(w, http.StatusConflict, "No beds available at this hospital", response.CodeNoBedsAvailable)
	case errors.As(err, &upstream):
		logger.ErrorContext(r.Context(), "Chat upstream failure", "error", err)
		response.WriteError(w, http.StatusInternalServerError, "Failed to get response from assistant", response.CodeUpstreamFailure)
	case strings.Contains(err.Error(), "validation failed"):
		response.BadRequest(w, strings.TrimPrefix(err.Error(), "validation failed: "))
	default:
		logger.ErrorContext(r.Context(), "Unhandled service error", "error", err)
		response.InternalError(w, "Something went wrong")
	}
}
