package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct checks the validate tags of a request body
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// hashToken creates a SHA256 hash of a token for comparison with the configured hash
func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"model":     h.model.Name,
		"version":   h.model.Version,
		"features":  h.model.Features,
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, dep := range h.checks {
		err := dep.Ping(ctx)
		checks[name] = err == nil
		if err != nil {
			allHealthy = false
			h.logger.Warnw("Readiness check failed", "dependency", name, "error", err)
		}
	}

	queueDepth := 0
	if h.pool != nil {
		queueDepth = h.pool.QueueDepth()
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": queueDepth,
	})
}

// IngestAuthMiddleware validates the ingest token against INGEST_TOKEN_HASH
func (h *Handler) IngestAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.ingestTokenHash == "" {
			h.errorResponse(w, http.StatusServiceUnavailable, "Ingestion is not configured")
			return
		}

		token := r.Header.Get("X-Ingest-Token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			// DO NOT call r.FormValue here as it consumes the body
			h.errorResponse(w, http.StatusUnauthorized, "Missing ingest token")
			return
		}

		if subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(h.ingestTokenHash)) != 1 {
			h.logger.Warnw("Rejected ingest token", "remote", r.RemoteAddr)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid ingest token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
