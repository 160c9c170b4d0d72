package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/footyliveliness/api/internal/models"
	"github.com/footyliveliness/api/internal/ranking"
)

func newTestHandler(cfg Config) http.Handler {
	cfg.Logger = zap.NewNop()
	if cfg.Prediction == nil {
		cfg.Prediction = &MockPredictionService{}
	}
	if cfg.ModelStats == nil {
		cfg.ModelStats = &MockModelStatsService{}
	}
	if cfg.Fixtures == nil {
		cfg.Fixtures = &MockFixtureService{}
	}
	if cfg.TeamForm == nil {
		cfg.TeamForm = &MockTeamFormService{}
	}
	if cfg.WorkerPool == nil {
		cfg.WorkerPool = &MockIngestQueue{}
	}
	return New(cfg).Router([]string{"*"}, 5*time.Second)
}

func TestHealth(t *testing.T) {
	r := newTestHandler(Config{Model: ModelInfo{Name: "Ridge Regression", Version: "1.0.0", Features: 38}})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["model"] != "Ridge Regression" || body["features"] != float64(38) {
		t.Errorf("body = %v", body)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
	}{
		{
			name:       "All healthy",
			checks:     map[string]Pinger{"store": &MockPinger{}, "redis": &MockPinger{}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "One failing",
			checks:     map[string]Pinger{"store": &MockPinger{}, "clickhouse": &MockPinger{Err: errors.New("down")}},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "No dependencies",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestHandler(Config{Checks: tt.checks})

			req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetUpcoming(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		mockErr    error
		wantStatus int
		checkQuery func(t *testing.T, q models.RankingQuery)
	}{
		{
			name:       "No query",
			url:        "/api/upcoming",
			wantStatus: http.StatusOK,
			checkQuery: func(t *testing.T, q models.RankingQuery) {
				if q.Round != nil || q.Status != "" || q.Limit != 0 {
					t.Errorf("query = %+v", q)
				}
			},
		},
		{
			name:       "All params",
			url:        "/api/upcoming?round=16&status=upcoming&limit=5&filter=prediction.liveliness%20%3E%204.0",
			wantStatus: http.StatusOK,
			checkQuery: func(t *testing.T, q models.RankingQuery) {
				if q.Round == nil || *q.Round != 16 || q.Status != models.StatusUpcoming || q.Limit != 5 {
					t.Errorf("query = %+v", q)
				}
				if q.Filter != "prediction.liveliness > 4.0" {
					t.Errorf("filter = %q", q.Filter)
				}
			},
		},
		{name: "Status all", url: "/api/upcoming?status=all", wantStatus: http.StatusOK},
		{name: "Bad round", url: "/api/upcoming?round=abc", wantStatus: http.StatusBadRequest},
		{name: "Bad status", url: "/api/upcoming?status=postponed", wantStatus: http.StatusBadRequest},
		{name: "Bad limit", url: "/api/upcoming?limit=-1", wantStatus: http.StatusBadRequest},
		{
			name:       "Bad filter",
			url:        "/api/upcoming?filter=match.round",
			mockErr:    fmt.Errorf("%w: expression must return bool", ranking.ErrInvalidFilter),
			wantStatus: http.StatusBadRequest,
		},
		{name: "Service error", url: "/api/upcoming", mockErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockPredictionService{
				RankFixturesFunc: func(ctx context.Context, q models.RankingQuery) ([]models.RankedMatch, error) {
					if tt.checkQuery != nil {
						tt.checkQuery(t, q)
					}
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return []models.RankedMatch{{Rank: 1, HomeTeam: "Liverpool", AwayTeam: "Manchester City", PredictedLiveliness: 5.2}}, nil
				},
			}
			r := newTestHandler(Config{Prediction: svc})

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestPredict(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockErr    error
		wantStatus int
	}{
		{name: "By teams", body: `{"home":"Arsenal","away":"Chelsea"}`, wantStatus: http.StatusOK},
		{name: "By features", body: `{"features":{"home_xG_att_90":1.8}}`, wantStatus: http.StatusOK},
		{name: "Invalid JSON", body: `{"home":`, wantStatus: http.StatusBadRequest},
		{name: "Missing away", body: `{"home":"Arsenal"}`, wantStatus: http.StatusBadRequest},
		{name: "Unknown team", body: `{"home":"Arsenal","away":"Nowhere"}`, mockErr: fmt.Errorf("%w: Nowhere", models.ErrUnknownTeam), wantStatus: http.StatusNotFound},
		{name: "Service error", body: `{"home":"Arsenal","away":"Chelsea"}`, mockErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockPredictionService{
				PredictMatchFunc: func(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error) {
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return &models.MatchPrediction{HomeTeam: req.Home, AwayTeam: req.Away, PredictedLiveliness: 4.2, Confidence: 70}, nil
				},
			}
			r := newTestHandler(Config{Prediction: svc})

			req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestPredictBatch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCount  int
	}{
		{
			name:       "Two matches",
			body:       `{"matches":[{"home":"Arsenal","away":"Chelsea"},{"home":"Leeds","away":"Wolves"}]}`,
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{name: "Empty list", body: `{"matches":[]}`, wantStatus: http.StatusBadRequest},
		{name: "Invalid item", body: `{"matches":[{"home":"Arsenal"}]}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockPredictionService{
				PredictBatchFunc: func(ctx context.Context, reqs []models.PredictRequest) ([]models.RankedMatch, error) {
					out := make([]models.RankedMatch, len(reqs))
					for i, r := range reqs {
						out[i] = models.RankedMatch{Rank: i + 1, HomeTeam: r.Home, AwayTeam: r.Away}
					}
					return out, nil
				},
			}
			r := newTestHandler(Config{Prediction: svc})

			req := httptest.NewRequest(http.MethodPost, "/api/predict/batch", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("StatusCode = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp models.BatchPredictResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Count != tt.wantCount || len(resp.Predictions) != tt.wantCount {
				t.Errorf("count = %d, predictions %d, want %d", resp.Count, len(resp.Predictions), tt.wantCount)
			}
		})
	}
}

func TestStatsEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		backtest   func(ctx context.Context, season string) (*models.BacktestReport, error)
		wantStatus int
	}{
		{name: "Model stats", url: "/api/stats", wantStatus: http.StatusOK},
		{
			name: "Backtest with season",
			url:  "/api/stats/backtest?season=2025/26",
			backtest: func(ctx context.Context, season string) (*models.BacktestReport, error) {
				if season != "2025/26" {
					return nil, fmt.Errorf("unexpected season %q", season)
				}
				return &models.BacktestReport{Season: season, Matches: 150}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Backtest without matches",
			url:  "/api/stats/backtest",
			backtest: func(ctx context.Context, season string) (*models.BacktestReport, error) {
				return nil, fmt.Errorf("no finished matches: %w", models.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Backtest failure",
			url:  "/api/stats/backtest",
			backtest: func(ctx context.Context, season string) (*models.BacktestReport, error) {
				return nil, errors.New("store down")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestHandler(Config{ModelStats: &MockModelStatsService{BacktestFunc: tt.backtest}})

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestGetTeamForm(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantTeam   string
		mockErr    error
		wantStatus int
	}{
		{name: "Known team", url: "/api/teams/Arsenal/form", wantTeam: "Arsenal", wantStatus: http.StatusOK},
		{name: "Escaped name", url: "/api/teams/Manchester%20City/form", wantTeam: "Manchester City", wantStatus: http.StatusOK},
		{name: "Unknown team", url: "/api/teams/Nowhere/form", wantTeam: "Nowhere", mockErr: models.ErrUnknownTeam, wantStatus: http.StatusNotFound},
		{name: "Service error", url: "/api/teams/Arsenal/form", wantTeam: "Arsenal", mockErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTeamFormService{
				GetTeamFormFunc: func(ctx context.Context, team string) ([]models.TeamForm, error) {
					if team != tt.wantTeam {
						t.Errorf("team = %q, want %q", team, tt.wantTeam)
					}
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return []models.TeamForm{{Team: team, Venue: models.VenueHome}, {Team: team, Venue: models.VenueAway}}, nil
				},
			}
			r := newTestHandler(Config{TeamForm: svc})

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRefreshFixtures(t *testing.T) {
	tests := []struct {
		name       string
		mockErr    error
		wantStatus int
	}{
		{name: "Success", wantStatus: http.StatusOK},
		{name: "Failure", mockErr: errors.New("bad file"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockFixtureService{
				RefreshFunc: func(ctx context.Context) (*models.RefreshFixturesResponse, error) {
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return &models.RefreshFixturesResponse{Status: "success", FixturesCount: 10, Source: "all_fixtures.json"}, nil
				},
			}
			r := newTestHandler(Config{Fixtures: svc})

			req := httptest.NewRequest(http.MethodPost, "/api/refresh-fixtures", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestHandler(Config{})

	// one request so the route counters have a sample
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "footy_http_requests_total") {
		t.Error("metrics output missing footy_http_requests_total")
	}
}
