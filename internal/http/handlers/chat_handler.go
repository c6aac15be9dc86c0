package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/carebridge/carebridge-api/internal/http/response"
)

func (h *Handlers) Chatbot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		response.BadRequest(w, "Query is required")
		return
	}

	output, err := h.chatService.Ask(r.Context(), req.Query)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"output": output})
}
