package logic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/footyliveliness/api/internal/features"
	"github.com/footyliveliness/api/internal/models"
)

var venues = []models.Venue{models.VenueHome, models.VenueAway}

type teamFormService struct {
	matches MatchStore
	forms   FormStore
	logger  *zap.SugaredLogger
	now     func() time.Time

	// writeMu spans the history read and the snapshot write, so an older
	// read never overwrites snapshots built from a newer one.
	writeMu sync.Mutex
}

// NewTeamFormService computes snapshots from the match store. forms may be
// nil, in which case snapshots are computed on every read.
func NewTeamFormService(matches MatchStore, forms FormStore, logger *zap.Logger) TeamFormService {
	return &teamFormService{matches: matches, forms: forms, logger: logger.Sugar(), now: time.Now}
}

func (s *teamFormService) Snapshot(ctx context.Context) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	b, err := s.builder(ctx)
	if err != nil {
		return 0, err
	}
	return s.write(ctx, b, b.History().Teams())
}

func (s *teamFormService) Refresh(ctx context.Context, teams []string) error {
	if len(teams) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	b, err := s.builder(ctx)
	if err != nil {
		return err
	}
	_, err = s.write(ctx, b, teams)
	return err
}

// GetTeamForm returns the home and away snapshots of team
func (s *teamFormService) GetTeamForm(ctx context.Context, team string) ([]models.TeamForm, error) {
	if s.forms != nil {
		if out, ok := s.stored(ctx, team); ok {
			return out, nil
		}
	}

	b, err := s.builder(ctx)
	if err != nil {
		return nil, err
	}
	if !b.History().Has(team) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTeam, team)
	}
	return s.compute(b, team), nil
}

func (s *teamFormService) stored(ctx context.Context, team string) ([]models.TeamForm, bool) {
	out := make([]models.TeamForm, 0, len(venues))
	for _, v := range venues {
		f, err := s.forms.GetForm(ctx, team, v)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				s.logger.Warnw("Form store lookup failed", "error", err, "team", team, "venue", v)
			}
			return nil, false
		}
		out = append(out, *f)
	}
	return out, true
}

func (s *teamFormService) builder(ctx context.Context) (*features.Builder, error) {
	results, err := s.matches.ListResults(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return features.NewBuilder(features.NewHistory(results)), nil
}

// compute returns the latest snapshots, taken after every stored match
func (s *teamFormService) compute(b *features.Builder, team string) []models.TeamForm {
	now := s.now().UTC()
	out := make([]models.TeamForm, 0, len(venues))
	for _, v := range venues {
		f := b.TeamForm(team, v, time.Time{})
		f.UpdatedAt = now
		out = append(out, f)
	}
	return out
}

func (s *teamFormService) write(ctx context.Context, b *features.Builder, teams []string) (int, error) {
	forms := make([]models.TeamForm, 0, len(teams)*len(venues))
	for _, team := range teams {
		forms = append(forms, s.compute(b, team)...)
	}
	if s.forms == nil || len(forms) == 0 {
		return len(forms), nil
	}
	if err := s.forms.SaveForms(ctx, forms); err != nil {
		return 0, fmt.Errorf("save forms: %w", err)
	}
	s.logger.Infow("Team form snapshots written", "teams", len(teams), "snapshots", len(forms))
	return len(forms), nil
}
