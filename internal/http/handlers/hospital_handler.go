package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/carebridge/carebridge-api/internal/domain"
	"github.com/carebridge/carebridge-api/internal/http/response"
)

// ListHospitals is the public directory patients browse when booking.
func (h *Handlers) ListHospitals(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	limit, offset := parsePagination(r)

	hospitals, err := h.hospitalService.List(r.Context(), city, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if hospitals == nil {
		hospitals = []domain.HospitalInfo{}
	}

	response.JSON(w, http.StatusOK, map[string]any{"hospitals": hospitals})
}

func (h *Handlers) UpdateBeds(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req domain.UpdateBedsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	info, err := h.hospitalService.UpdateBeds(r.Context(), claims.Sub, &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, info)
}
