package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/internal/http/response"
)

func (h *Handlers) BookAppointment(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.appointmentService.Book(r.Context(), claims.Sub, &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, appointment)
}

func (h *Handlers) ListUserAppointments(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	limit, offset := parsePagination(r)
	appointments, err := h.appointmentService.ListForUser(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if appointments == nil {
		appointments = []domain.UserAppointment{}
	}

	response.JSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

func (h *Handlers) ListHospitalAppointments(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var status *domain.AppointmentStatus
	if v := r.URL.Query().Get("status"); v != "" && v != "all" {
		parsed, ok := domain.ParseAppointmentStatus(v)
		if !ok {
			response.BadRequest(w, "Invalid status filter")
			return
		}
		status = &parsed
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	limit, offset := parsePagination(r)
	appointments, err := h.appointmentService.ListForHospital(r.Context(), claims.Sub, status, search, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if appointments == nil {
		appointments = []domain.HospitalAppointment{}
	}

	response.JSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

func (h *Handlers) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid appointment id")
		return
	}

	appointment, err := h.appointmentService.Confirm(r.Context(), claims.Sub, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, appointment)
}

func (h *Handlers) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid appointment id")
		return
	}

	appointment, err := h.appointmentService.Cancel(r.Context(), claims.Sub, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, appointment)
}
