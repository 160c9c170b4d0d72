package handlers

import "net/http"

// RefreshFixtures reloads the fixture feed into the store
// @Summary Reload fixtures
// @Tags Fixtures
// @Produce json
// @Success 200 {object} models.RefreshFixturesResponse
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /refresh-fixtures [post]
func (h *Handler) RefreshFixtures(w http.ResponseWriter, r *http.Request) {
	resp, err := h.fixtures.Refresh(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to refresh fixtures", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to refresh fixtures")
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}
