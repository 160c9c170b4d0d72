package handlers

import (
	"context"

	"github.com/footyliveliness/api/internal/models"
)

type MockIngestQueue struct {
	EnqueueFunc func(result *models.MatchResult) bool
	Depth       int
}

func (m *MockIngestQueue) Enqueue(result *models.MatchResult) bool {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(result)
	}
	return true
}

func (m *MockIngestQueue) QueueDepth() int { return m.Depth }

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error { return m.Err }

// MockPredictionService
type MockPredictionService struct {
	RankFixturesFunc func(ctx context.Context, q models.RankingQuery) ([]models.RankedMatch, error)
	PredictMatchFunc func(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error)
	PredictBatchFunc func(ctx context.Context, reqs []models.PredictRequest) ([]models.RankedMatch, error)
}

func (m *MockPredictionService) RankFixtures(ctx context.Context, q models.RankingQuery) ([]models.RankedMatch, error) {
	if m.RankFixturesFunc != nil {
		return m.RankFixturesFunc(ctx, q)
	}
	return nil, nil
}

func (m *MockPredictionService) PredictMatch(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error) {
	if m.PredictMatchFunc != nil {
		return m.PredictMatchFunc(ctx, req)
	}
	return &models.MatchPrediction{}, nil
}

func (m *MockPredictionService) PredictBatch(ctx context.Context, reqs []models.PredictRequest) ([]models.RankedMatch, error) {
	if m.PredictBatchFunc != nil {
		return m.PredictBatchFunc(ctx, reqs)
	}
	return nil, nil
}

// MockModelStatsService
type MockModelStatsService struct {
	GetModelStatsFunc func(ctx context.Context) (*models.ModelStats, error)
	BacktestFunc      func(ctx context.Context, season string) (*models.BacktestReport, error)
}

func (m *MockModelStatsService) GetModelStats(ctx context.Context) (*models.ModelStats, error) {
	if m.GetModelStatsFunc != nil {
		return m.GetModelStatsFunc(ctx)
	}
	return &models.ModelStats{}, nil
}

func (m *MockModelStatsService) Backtest(ctx context.Context, season string) (*models.BacktestReport, error) {
	if m.BacktestFunc != nil {
		return m.BacktestFunc(ctx, season)
	}
	return &models.BacktestReport{}, nil
}

// MockFixtureService
type MockFixtureService struct {
	RefreshFunc func(ctx context.Context) (*models.RefreshFixturesResponse, error)
}

func (m *MockFixtureService) Refresh(ctx context.Context) (*models.RefreshFixturesResponse, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return &models.RefreshFixturesResponse{Status: "success"}, nil
}

// MockTeamFormService
type MockTeamFormService struct {
	GetTeamFormFunc func(ctx context.Context, team string) ([]models.TeamForm, error)
}

func (m *MockTeamFormService) Snapshot(ctx context.Context) (int, error) { return 0, nil }

func (m *MockTeamFormService) Refresh(ctx context.Context, teams []string) error { return nil }

func (m *MockTeamFormService) GetTeamForm(ctx context.Context, team string) ([]models.TeamForm, error) {
	if m.GetTeamFormFunc != nil {
		return m.GetTeamFormFunc(ctx, team)
	}
	return nil, nil
}
