package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/footyliveliness/api/internal/features"
	"github.com/footyliveliness/api/internal/model"
	"github.com/footyliveliness/api/internal/models"
	"github.com/footyliveliness/api/internal/ranking"
)

const (
	rankingFactors = 3
	predictFactors = 5
)

type predictionService struct {
	model   *model.Linear
	matches MatchStore
	forms   FormStore
	log     PredictionLog
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewPredictionService wires the prediction pipeline. forms and log may be nil.
func NewPredictionService(m *model.Linear, matches MatchStore, forms FormStore, log PredictionLog, logger *zap.Logger) PredictionService {
	return &predictionService{
		model:   m,
		matches: matches,
		forms:   forms,
		log:     log,
		logger:  logger.Sugar(),
		now:     time.Now,
	}
}

// RankFixtures predicts every stored fixture from its pre-match history and ranks the ones matching q.
func (s *predictionService) RankFixtures(ctx context.Context, q models.RankingQuery) ([]models.RankedMatch, error) {
	var (
		fixtures []models.Fixture
		results  []models.MatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if fixtures, err = s.matches.ListFixtures(gctx); err != nil {
			return fmt.Errorf("list fixtures: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if results, err = s.matches.ListResults(gctx, ""); err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.MatchResult, len(results))
	for i := range results {
		byID[results[i].MatchID] = &results[i]
	}

	builder := features.NewBuilder(features.NewHistory(results))
	predicted := make([]models.RankedMatch, 0, len(fixtures))
	for i := range fixtures {
		rm, err := s.predictFixture(builder, &fixtures[i], byID[fixtures[i].MatchID])
		if err != nil {
			return nil, fmt.Errorf("fixture %s vs %s: %w", fixtures[i].HomeTeam, fixtures[i].AwayTeam, err)
		}
		predicted = append(predicted, rm)
	}

	ranked, err := ranking.Apply(predicted, q)
	if err != nil {
		return nil, err
	}

	s.logRun(ctx, ranked)
	return ranked, nil
}

func (s *predictionService) predictFixture(b *features.Builder, f *models.Fixture, result *models.MatchResult) (models.RankedMatch, error) {
	set, home, away := b.BuildDetailed(*f)
	vec := features.Vector(set, s.model.FeatureNames())

	score, err := s.model.Predict(vec)
	if err != nil {
		return models.RankedMatch{}, err
	}
	factors, err := s.model.Contributions(vec)
	if err != nil {
		return models.RankedMatch{}, err
	}
	highStakes := features.IsHighStakes(set)

	rm := models.RankedMatch{
		MatchID:             f.MatchID,
		Round:               f.Round,
		HomeTeam:            f.HomeTeam,
		AwayTeam:            f.AwayTeam,
		HomeTeamID:          f.HomeTeamID,
		AwayTeamID:          f.AwayTeamID,
		Date:                f.Date,
		Time:                f.Time,
		Status:              f.Status,
		PredictedLiveliness: model.Round2(score),
		Confidence:          model.Confidence(vec, score, highStakes),
		IsHighStakes:        highStakes,
		HomePosition:        int(set[features.HomePosition]),
		AwayPosition:        int(set[features.AwayPosition]),
		HomeForm:            home.FormString,
		AwayForm:            away.FormString,
		ActualXG:            f.ActualXG,
		ActualScore:         f.ActualScore,
		KeyFactors:          roundFactors(factors, rankingFactors),
	}

	if f.IsFinished() {
		switch {
		case f.ActualXG != nil:
			v := model.Round2(features.LivelinessFromXG(f.ActualXG.Home, f.ActualXG.Away))
			rm.ActualLiveliness = &v
		case result != nil:
			v := model.Round2(features.Liveliness(*result))
			rm.ActualLiveliness = &v
			rm.ActualXG = &models.XGPair{Home: result.HomeXG, Away: result.AwayXG, Total: result.HomeXG + result.AwayXG, SimpleXG: v}
			rm.ActualScore = &models.Score{Home: result.HomeGoals, Away: result.AwayGoals}
		}
	}
	return rm, nil
}

// logRun writes the run to the prediction log. Failures are logged, not returned.
func (s *predictionService) logRun(ctx context.Context, ranked []models.RankedMatch) {
	if s.log == nil || len(ranked) == 0 {
		return
	}

	runID := uuid.New().String()
	now := s.now().UTC()
	name := s.model.Artifact().Name
	records := make([]models.PredictionRecord, len(ranked))
	for i, m := range ranked {
		records[i] = models.PredictionRecord{
			RunID:     runID,
			MatchID:   m.MatchID,
			Round:     m.Round,
			HomeTeam:  m.HomeTeam,
			AwayTeam:  m.AwayTeam,
			Predicted: m.PredictedLiveliness,
			Model:     name,
			CreatedAt: now,
		}
		if m.ActualLiveliness != nil {
			records[i].Actual = *m.ActualLiveliness
			records[i].HasActual = true
		}
	}

	if err := s.log.LogPredictions(ctx, records); err != nil {
		s.logger.Warnw("Failed to log predictions", "error", err, "runID", runID, "count", len(records))
	}
}

// PredictMatch forecasts one match from stored team form, match history or explicit features.
func (s *predictionService) PredictMatch(ctx context.Context, req models.PredictRequest) (*models.MatchPrediction, error) {
	var history *features.History
	if req.Home != "" || req.Away != "" {
		results, err := s.matches.ListResults(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("list results: %w", err)
		}
		history = features.NewHistory(results)
	}
	return s.predictOne(ctx, history, req)
}

// PredictBatch predicts each request and ranks the results.
func (s *predictionService) PredictBatch(ctx context.Context, reqs []models.PredictRequest) ([]models.RankedMatch, error) {
	results, err := s.matches.ListResults(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	history := features.NewHistory(results)

	out := make([]models.RankedMatch, 0, len(reqs))
	for i, req := range reqs {
		p, err := s.predictOne(ctx, history, req)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", i, err)
		}
		out = append(out, models.RankedMatch{
			MatchID:             req.ID,
			Round:               req.Round,
			HomeTeam:            p.HomeTeam,
			AwayTeam:            p.AwayTeam,
			Status:              models.StatusUpcoming,
			PredictedLiveliness: p.PredictedLiveliness,
			Confidence:          p.Confidence,
			IsHighStakes:        p.IsHighStakes,
			HomePosition:        int(p.Features[features.HomePosition]),
			AwayPosition:        int(p.Features[features.AwayPosition]),
			KeyFactors:          p.KeyFactors,
		})
	}
	return ranking.Rank(out), nil
}

func (s *predictionService) predictOne(ctx context.Context, history *features.History, req models.PredictRequest) (*models.MatchPrediction, error) {
	set, err := s.featuresFor(ctx, history, req)
	if err != nil {
		return nil, err
	}

	vec := features.Vector(set, s.model.FeatureNames())
	score, err := s.model.Predict(vec)
	if err != nil {
		return nil, err
	}
	factors, err := s.model.Contributions(vec)
	if err != nil {
		return nil, err
	}
	highStakes := features.IsHighStakes(set)

	return &models.MatchPrediction{
		HomeTeam:            req.Home,
		AwayTeam:            req.Away,
		PredictedLiveliness: model.Round2(score),
		Confidence:          model.Confidence(vec, score, highStakes),
		IsHighStakes:        highStakes,
		KeyFactors:          roundFactors(factors, predictFactors),
		Features:            set,
		Timestamp:           s.now().UTC(),
	}, nil
}

// featuresFor prefers stored snapshots, then match history. Explicit
// features in the request always override derived base values.
func (s *predictionService) featuresFor(ctx context.Context, history *features.History, req models.PredictRequest) (features.FeatureSet, error) {
	if req.Home == "" && req.Away == "" {
		return features.FromExplicit(req.Features), nil
	}

	if home, away, ok := s.storedForms(ctx, req.Home, req.Away); ok {
		return features.Override(features.FromForms(*home, *away), req.Features), nil
	}

	if len(req.Features) == 0 {
		for _, team := range []string{req.Home, req.Away} {
			if history == nil || !history.Has(team) {
				return nil, fmt.Errorf("%w: %s", models.ErrUnknownTeam, team)
			}
		}
	}

	if history == nil {
		history = features.NewHistory(nil)
	}
	return features.NewBuilder(history).Build(models.Fixture{
		HomeTeam: req.Home,
		AwayTeam: req.Away,
		Round:    req.Round,
		Features: req.Features,
	}), nil
}

func (s *predictionService) storedForms(ctx context.Context, home, away string) (*models.TeamForm, *models.TeamForm, bool) {
	if s.forms == nil {
		return nil, nil, false
	}
	h, err := s.forms.GetForm(ctx, home, models.VenueHome)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warnw("Form store lookup failed", "error", err, "team", home)
		}
		return nil, nil, false
	}
	a, err := s.forms.GetForm(ctx, away, models.VenueAway)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warnw("Form store lookup failed", "error", err, "team", away)
		}
		return nil, nil, false
	}
	return h, a, true
}

func roundFactors(factors []models.Factor, n int) []models.Factor {
	if n < len(factors) {
		factors = factors[:n]
	}
	out := make([]models.Factor, len(factors))
	for i, f := range factors {
		out[i] = models.Factor{
			Feature:      f.Feature,
			Value:        model.Round2(f.Value),
			Contribution: model.Round2(f.Contribution),
		}
	}
	return out
}
