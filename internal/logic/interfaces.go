package logic

import (
	"context"

	"github.com/footyliveliness/api/internal/models"
)

// MatchStore persists finished results and the current fixture list
type MatchStore interface {
	ListResults(ctx context.Context, season string) ([]models.MatchResult, error)
	SaveResults(ctx context.Context, results []models.MatchResult) error
	ListFixtures(ctx context.Context) ([]models.Fixture, error)
	ReplaceFixtures(ctx context.Context, fixtures []models.Fixture) error
	Ping(ctx context.Context) error
}

// FormStore caches the latest rolling form of each team and venue
type FormStore interface {
	SaveForms(ctx context.Context, forms []models.TeamForm) error
	// GetForm returns models.ErrNotFound when no snapshot exists
	GetForm(ctx context.Context, team string, venue models.Venue) (*models.TeamForm, error)
	Ping(ctx context.Context) error
}

// PredictionLog records every ranking run
type PredictionLog interface {
	LogPredictions(ctx context.Context, records []models.PredictionRecord) error
	Ping(ctx context.Context) error
}

// FixtureSource loads the scraped fixture feed and names where it came from
type FixtureSource interface {
	Load(ctx context.Context) ([]models.Fixture, string, error)
}

type PredictionService interface {
	RankFixtures(ctx context.Context, q models.RankingQuery) ([]models.RankedMatch, error)
	PredictMatch(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error)
	PredictBatch(ctx context.Context, reqs []models.PredictRequest) ([]models.RankedMatch, error)
}

type ModelStatsService interface {
	GetModelStats(ctx context.Context) (*models.ModelStats, error)
	Backtest(ctx context.Context, season string) (*models.BacktestReport, error)
}

type FixtureService interface {
	Refresh(ctx context.Context) (*models.RefreshFixturesResponse, error)
}

type TeamFormService interface {
	// Snapshot recomputes every team's form and returns the number of snapshots written
	Snapshot(ctx context.Context) (int, error)
	// Refresh recomputes the form of the given teams only
	Refresh(ctx context.Context, teams []string) error
	// GetTeamForm returns the home and away snapshots of team
	GetTeamForm(ctx context.Context, team string) ([]models.TeamForm, error)
}
