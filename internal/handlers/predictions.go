package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/footyliveliness/api/internal/models"
	"github.com/footyliveliness/api/internal/ranking"
)

// GetUpcoming returns the ranked fixture list
// @Summary Ranked fixtures
// @Tags Predictions
// @Produce json
// @Param round query int false "Round number"
// @Param status query string false "upcoming, ongoing or finished"
// @Param limit query int false "Maximum matches"
// @Param filter query string false "Filter expression, e.g. prediction.liveliness > 4.0"
// @Success 200 {array} models.RankedMatch
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /upcoming [get]
func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	q, err := parseRankingQuery(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := h.prediction.RankFixtures(r.Context(), q)
	if err != nil {
		if errors.Is(err, ranking.ErrInvalidFilter) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Failed to rank fixtures", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to rank fixtures")
		return
	}

	h.jsonResponse(w, http.StatusOK, matches)
}

func parseRankingQuery(r *http.Request) (models.RankingQuery, error) {
	var q models.RankingQuery
	values := r.URL.Query()

	if s := values.Get("round"); s != "" {
		round, err := strconv.Atoi(s)
		if err != nil || round < 0 {
			return q, errors.New("round must be a non-negative integer")
		}
		q.Round = &round
	}

	switch status := models.FixtureStatus(values.Get("status")); status {
	case "", "all":
	case models.StatusUpcoming, models.StatusOngoing, models.StatusFinished:
		q.Status = status
	default:
		return q, errors.New("status must be upcoming, ongoing or finished")
	}

	if s := values.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			return q, errors.New("limit must be a non-negative integer")
		}
		q.Limit = limit
	}

	q.Filter = values.Get("filter")
	return q, nil
}

// Predict forecasts one match
// @Summary Predict a match
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictRequest true "Match"
// @Success 200 {object} models.MatchPrediction
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Unknown team"
// @Router /predict [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := ValidateStruct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	pred, err := h.prediction.PredictMatch(r.Context(), req)
	if err != nil {
		h.predictionError(w, err, "home", req.Home, "away", req.Away)
		return
	}

	h.jsonResponse(w, http.StatusOK, pred)
}

// PredictBatch forecasts and ranks several matches
// @Summary Predict several matches
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.BatchPredictRequest true "Matches"
// @Success 200 {object} models.BatchPredictResponse
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predict/batch [post]
func (h *Handler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req models.BatchPredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := ValidateStruct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	ranked, err := h.prediction.PredictBatch(r.Context(), req.Matches)
	if err != nil {
		h.predictionError(w, err, "count", len(req.Matches))
		return
	}

	h.jsonResponse(w, http.StatusOK, models.BatchPredictResponse{Predictions: ranked, Count: len(ranked)})
}

func (h *Handler) predictionError(w http.ResponseWriter, err error, keysAndValues ...interface{}) {
	if errors.Is(err, models.ErrUnknownTeam) {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Errorw("Prediction failed", append([]interface{}{"error", err}, keysAndValues...)...)
	h.errorResponse(w, http.StatusInternalServerError, "Prediction failed")
}
