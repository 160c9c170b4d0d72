package handlers

import (
	"errors"
	"net/http"

	"github.com/footyliveliness/api/internal/models"
)

// GetModelStats returns the model metadata and offline performance
// @Summary Model statistics
// @Tags Stats
// @Produce json
// @Success 200 {object} models.ModelStats
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /stats [get]
func (h *Handler) GetModelStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.modelStats.GetModelStats(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to get model stats", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get model stats")
		return
	}
	h.jsonResponse(w, http.StatusOK, stats)
}

// GetBacktest scores the model on finished matches
// @Summary Live backtest
// @Tags Stats
// @Produce json
// @Param season query string false "Season, e.g. 2025/26"
// @Success 200 {object} models.BacktestReport
// @Failure 404 {object} map[string]string "No finished matches"
// @Router /stats/backtest [get]
func (h *Handler) GetBacktest(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")

	report, err := h.modelStats.Backtest(r.Context(), season)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "No finished matches to backtest")
			return
		}
		h.logger.Errorw("Backtest failed", "error", err, "season", season)
		h.errorResponse(w, http.StatusInternalServerError, "Backtest failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, report)
}
