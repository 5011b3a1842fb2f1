package handler

import (
	"net/http"

	"github.com/mcoot/morpion/internal/api/middleware"
	"github.com/mcoot/morpion/internal/api/response"
	"github.com/mcoot/morpion/internal/services/stats"
)

// ProfileHandler serves profile statistics and match history
type ProfileHandler struct {
	statsService *stats.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(statsService *stats.Service) *ProfileHandler {
	return &ProfileHandler{
		statsService: statsService,
	}
}

// Get handles GET /api/v1/users/{id}/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}

	view, err := h.statsService.Profile(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromView(view))
}

// GetMine handles GET /api/v1/users/me/profile
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	view, err := h.statsService.Profile(r.Context(), user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromView(view))
}
