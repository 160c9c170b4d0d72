package logic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/footyliveliness/api/internal/models"
)

type fixtureService struct {
	source  FixtureSource
	matches MatchStore
	logger  *zap.SugaredLogger
}

func NewFixtureService(source FixtureSource, matches MatchStore, logger *zap.Logger) FixtureService {
	return &fixtureService{source: source, matches: matches, logger: logger.Sugar()}
}

// Refresh reloads the fixture feed and replaces the stored fixture list
func (s *fixtureService) Refresh(ctx context.Context) (*models.RefreshFixturesResponse, error) {
	fixtures, source, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}

	if err := s.matches.ReplaceFixtures(ctx, fixtures); err != nil {
		return nil, fmt.Errorf("store fixtures: %w", err)
	}

	s.logger.Infow("Fixtures refreshed", "count", len(fixtures), "source", source)
	return &models.RefreshFixturesResponse{
		Status:        "success",
		FixturesCount: len(fixtures),
		Source:        source,
		Message:       fmt.Sprintf("Loaded %d fixtures from %s", len(fixtures), source),
	}, nil
}
