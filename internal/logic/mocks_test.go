package logic

import (
	"context"

	"github.com/footyliveliness/api/internal/features"
	"github.com/footyliveliness/api/internal/model"
	"github.com/footyliveliness/api/internal/models"
)

type MockMatchStore struct {
	ListResultsFunc     func(ctx context.Context, season string) ([]models.MatchResult, error)
	SaveResultsFunc     func(ctx context.Context, results []models.MatchResult) error
	ListFixturesFunc    func(ctx context.Context) ([]models.Fixture, error)
	ReplaceFixturesFunc func(ctx context.Context, fixtures []models.Fixture) error
}

func (m *MockMatchStore) ListResults(ctx context.Context, season string) ([]models.MatchResult, error) {
	if m.ListResultsFunc != nil {
		return m.ListResultsFunc(ctx, season)
	}
	return nil, nil
}

func (m *MockMatchStore) SaveResults(ctx context.Context, results []models.MatchResult) error {
	if m.SaveResultsFunc != nil {
		return m.SaveResultsFunc(ctx, results)
	}
	return nil
}

func (m *MockMatchStore) ListFixtures(ctx context.Context) ([]models.Fixture, error) {
	if m.ListFixturesFunc != nil {
		return m.ListFixturesFunc(ctx)
	}
	return nil, nil
}

func (m *MockMatchStore) ReplaceFixtures(ctx context.Context, fixtures []models.Fixture) error {
	if m.ReplaceFixturesFunc != nil {
		return m.ReplaceFixturesFunc(ctx, fixtures)
	}
	return nil
}

func (m *MockMatchStore) Ping(ctx context.Context) error { return nil }

// MockFormStore keeps snapshots in memory
type MockFormStore struct {
	Forms   map[string]models.TeamForm
	GetErr  error
	SaveErr error
	Saved   int
}

func (m *MockFormStore) SaveForms(ctx context.Context, forms []models.TeamForm) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.Forms == nil {
		m.Forms = make(map[string]models.TeamForm)
	}
	for _, f := range forms {
		m.Forms[f.Team+":"+string(f.Venue)] = f
	}
	m.Saved += len(forms)
	return nil
}

func (m *MockFormStore) GetForm(ctx context.Context, team string, venue models.Venue) (*models.TeamForm, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	f, ok := m.Forms[team+":"+string(venue)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &f, nil
}

func (m *MockFormStore) Ping(ctx context.Context) error { return nil }

type MockPredictionLog struct {
	LogPredictionsFunc func(ctx context.Context, records []models.PredictionRecord) error
}

func (m *MockPredictionLog) LogPredictions(ctx context.Context, records []models.PredictionRecord) error {
	if m.LogPredictionsFunc != nil {
		return m.LogPredictionsFunc(ctx, records)
	}
	return nil
}

func (m *MockPredictionLog) Ping(ctx context.Context) error { return nil }

type MockFixtureSource struct {
	LoadFunc func(ctx context.Context) ([]models.Fixture, string, error)
}

func (m *MockFixtureSource) Load(ctx context.Context) ([]models.Fixture, string, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, "", nil
}

// testModel scores intercept 3 plus the sum of both attacking xG rates
func testModel() *model.Linear {
	a := &model.Artifact{Name: "Test Ridge", Version: "0.0.1", Target: "liveliness", Intercept: 3}
	a.Clip.Min, a.Clip.Max = 1, 8
	a.Training.Season = "2024/25"
	a.Training.Samples = 120
	a.Features = []model.FeatureParam{
		{Name: features.XGAttSum, Mean: 0, Scale: 1, Coef: 1},
		{Name: features.HomePosition, Mean: 10, Scale: 5, Coef: 0},
	}
	m, err := model.NewLinear(a)
	if err != nil {
		panic(err)
	}
	return m
}
