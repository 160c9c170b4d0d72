package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/footyliveliness/api/internal/models"
)

// IngestResults handles POST /api/v1/ingest/results
// @Summary Ingest finished results
// @Description Accepts newline-delimited JSON results. A line may also hold a JSON array.
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security IngestToken
// @Param body body []models.MatchResult true "Results"
// @Success 202 {object} map[string]interface{} "Accepted"
// @Failure 413 {object} map[string]string "Too Large"
// @Router /v1/ingest/results [post]
func (h *Handler) IngestResults(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	defer r.Body.Close()

	processed, rejected, dropped := 0, 0, 0
	queueFull := false

	for i, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		results, err := decodeLine(line)
		if err != nil {
			h.logger.Warnw("Failed to unmarshal result", "error", err, "lineNum", i)
			rejected++
			continue
		}

		for j := range results {
			if err := ValidateStruct(&results[j]); err != nil {
				h.logger.Warnw("Validation failed for result", "error", err, "lineNum", i, "matchID", results[j].MatchID)
				rejected++
				continue
			}
			if queueFull {
				dropped++
				continue
			}
			if !h.pool.Enqueue(&results[j]) {
				h.logger.Warn("Worker pool queue full, dropping remaining results in batch")
				queueFull = true
				dropped++
				continue
			}
			processed++
		}
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":    "accepted",
		"processed": processed,
		"rejected":  rejected,
		"dropped":   dropped,
	})
}

func decodeLine(line string) ([]models.MatchResult, error) {
	if strings.HasPrefix(line, "[") {
		var results []models.MatchResult
		if err := json.Unmarshal([]byte(line), &results); err != nil {
			return nil, err
		}
		return results, nil
	}
	var result models.MatchResult
	if err := json.Unmarshal([]byte(line), &result); err != nil {
		return nil, err
	}
	return []models.MatchResult{result}, nil
}
