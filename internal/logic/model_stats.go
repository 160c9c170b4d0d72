package logic

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/footyliveliness/api/internal/features"
	"github.com/footyliveliness/api/internal/model"
	"github.com/footyliveliness/api/internal/models"
)

const topCoefficients = 10

var backtestK = []int{5, 10, 20}

type modelStatsService struct {
	model   *model.Linear
	matches MatchStore
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewModelStatsService(m *model.Linear, matches MatchStore, logger *zap.Logger) ModelStatsService {
	return &modelStatsService{model: m, matches: matches, logger: logger.Sugar(), now: time.Now}
}

// GetModelStats returns the artifact metadata and its offline performance
func (s *modelStatsService) GetModelStats(ctx context.Context) (*models.ModelStats, error) {
	a := s.model.Artifact()
	return &models.ModelStats{
		Model:           a.Name,
		Version:         a.Version,
		Target:          a.Target,
		Features:        len(a.Features),
		Performance:     a.Performance,
		TrainingSeason:  a.Training.Season,
		TrainingMatches: a.Training.Samples,
		Alpha:           a.Training.Alpha,
		L1Ratio:         a.Training.L1Ratio,
		TopCoefficients: s.model.TopCoefficients(topCoefficients),
	}, nil
}

// Backtest predicts every finished match of season from the matches kicked
// off before it and scores the predictions against realised liveliness.
// An empty season evaluates the whole history.
func (s *modelStatsService) Backtest(ctx context.Context, season string) (*models.BacktestReport, error) {
	results, err := s.matches.ListResults(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	builder := features.NewBuilder(features.NewHistory(results))

	var eval []models.MatchResult
	skipped := 0
	for _, r := range builder.History().All() {
		if season != "" && r.Season != season {
			continue
		}
		// without a kickoff the pre-match cutoff is unknown
		if r.Kickoff.IsZero() {
			skipped++
			continue
		}
		eval = append(eval, r)
	}
	if skipped > 0 {
		s.logger.Warnw("Backtest skipped matches without kickoff", "count", skipped, "season", season)
	}
	if len(eval) == 0 {
		return nil, fmt.Errorf("no finished matches for season %q: %w", season, models.ErrNotFound)
	}

	actual := make([]float64, len(eval))
	pred := make([]float64, len(eval))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range eval {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := eval[i]
			set := builder.Build(models.Fixture{
				HomeTeam: r.HomeTeam,
				AwayTeam: r.AwayTeam,
				Round:    r.Round,
				Kickoff:  r.Kickoff,
			})
			score, err := s.model.Predict(features.Vector(set, s.model.FeatureNames()))
			if err != nil {
				return fmt.Errorf("match %s: %w", r.MatchID, err)
			}
			pred[i] = score
			actual[i] = features.Liveliness(r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.BacktestReport{
		Season:  season,
		Matches: len(eval),
		Performance: models.ModelPerformance{
			R2:           model.Round2(model.R2(actual, pred)),
			MAE:          model.Round2(model.MAE(actual, pred)),
			RMSE:         model.Round2(model.RMSE(actual, pred)),
			Spearman:     model.Round2(model.Spearman(actual, pred)),
			Top10HitRate: model.Round2(model.TopKHitRate(actual, pred, 10)),
		},
		TopKHitRate:         make(map[string]float64, len(backtestK)),
		PrecisionAtK:        make(map[string]float64, len(backtestK)),
		NDCG:                make(map[string]float64, len(backtestK)),
		CategoricalAccuracy: model.Round2(model.CategoricalAccuracy(actual, pred)),
		GeneratedAt:         s.now().UTC(),
	}
	for _, k := range backtestK {
		key := strconv.Itoa(k)
		report.TopKHitRate[key] = model.Round2(model.TopKHitRate(actual, pred, k))
		report.PrecisionAtK[key] = model.Round2(model.PrecisionAtK(actual, pred, k))
		report.NDCG[key] = model.Round2(model.NDCGAtK(actual, pred, k))
	}

	s.logger.Infow("Backtest complete", "season", season, "matches", len(eval), "mae", report.Performance.MAE)
	return report, nil
}
