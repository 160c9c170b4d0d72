package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/footyliveliness/api/internal/models"
)

// GetTeamForm returns the home and away form snapshots of a team
// @Summary Team form
// @Tags Teams
// @Produce json
// @Param team path string true "Team name"
// @Success 200 {array} models.TeamForm
// @Failure 404 {object} map[string]string "Unknown team"
// @Router /teams/{team}/form [get]
func (h *Handler) GetTeamForm(w http.ResponseWriter, r *http.Request) {
	team := strings.TrimSpace(chi.URLParam(r, "team"))
	if team == "" {
		h.errorResponse(w, http.StatusBadRequest, "Team is required")
		return
	}

	forms, err := h.teamForm.GetTeamForm(r.Context(), team)
	if err != nil {
		if errors.Is(err, models.ErrUnknownTeam) {
			h.errorResponse(w, http.StatusNotFound, "Unknown team")
			return
		}
		h.logger.Errorw("Failed to get team form", "error", err, "team", team)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get team form")
		return
	}

	h.jsonResponse(w, http.StatusOK, forms)
}
