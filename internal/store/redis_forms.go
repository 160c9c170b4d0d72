package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/footyliveliness/api/internal/models"
)

// RedisClient is the subset of *redis.Client the form store needs
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisFormStore keeps the latest rolling form of each team and venue as a Redis hash
type RedisFormStore struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisFormStore creates a form store. A zero ttl keeps snapshots until overwritten.
func NewRedisFormStore(client RedisClient, ttl time.Duration) *RedisFormStore {
	return &RedisFormStore{client: client, ttl: ttl}
}

// FormKey returns the hash key for a team's snapshot at venue
func FormKey(team string, venue models.Venue) string {
	return "team_form:" + team + ":" + string(venue)
}

func (s *RedisFormStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveForms writes all snapshots in one MULTI/EXEC
func (s *RedisFormStore) SaveForms(ctx context.Context, forms []models.TeamForm) error {
	if len(forms) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range forms {
			key := FormKey(forms[i].Team, forms[i].Venue)
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, formToHash(&forms[i]))
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save forms: %w", err)
	}
	return nil
}

// GetForm returns the stored snapshot or models.ErrNotFound
func (s *RedisFormStore) GetForm(ctx context.Context, team string, venue models.Venue) (*models.TeamForm, error) {
	fields, err := s.client.HGetAll(ctx, FormKey(team, venue)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if len(fields) == 0 {
		return nil, models.ErrNotFound
	}
	return hashToForm(fields)
}

func formToHash(f *models.TeamForm) map[string]any {
	return map[string]any{
		"team":           f.Team,
		"venue":          string(f.Venue),
		"xG_att_90":      f.XGAtt90,
		"SoT_att_90":     f.SoTAtt90,
		"BigCh_att_90":   f.BigChAtt90,
		"Corn_att_90":    f.CornAtt90,
		"ToB_att_90":     f.ToBAtt90,
		"xGA_def_90":     f.XGADef90,
		"SoT_agst_90":    f.SoTAgst90,
		"BigCh_agst_90":  f.BigChAgst90,
		"position":       f.Position,
		"points":         f.Points,
		"goal_diff":      f.GoalDiff,
		"venue_points":   f.VenuePoints,
		"last3_points":   f.Last3Points,
		"last3_goals":    f.Last3Goals,
		"form_trend":     f.FormTrend,
		"strength_ratio": f.StrengthRatio,
		"form":           f.FormString,
		"matches_used":   f.MatchesUsed,
		"defaulted":      strconv.FormatBool(f.Defaulted),
		"updated_at":     f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func hashToForm(h map[string]string) (*models.TeamForm, error) {
	f := &models.TeamForm{
		Team:       h["team"],
		Venue:      models.Venue(h["venue"]),
		FormString: h["form"],
	}

	floats := map[string]*float64{
		"xG_att_90":      &f.XGAtt90,
		"SoT_att_90":     &f.SoTAtt90,
		"BigCh_att_90":   &f.BigChAtt90,
		"Corn_att_90":    &f.CornAtt90,
		"ToB_att_90":     &f.ToBAtt90,
		"xGA_def_90":     &f.XGADef90,
		"SoT_agst_90":    &f.SoTAgst90,
		"BigCh_agst_90":  &f.BigChAgst90,
		"last3_points":   &f.Last3Points,
		"last3_goals":    &f.Last3Goals,
		"form_trend":     &f.FormTrend,
		"strength_ratio": &f.StrengthRatio,
	}
	for k, dst := range floats {
		v, ok := h[k]
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("form field %s: %w", k, err)
		}
		*dst = n
	}

	ints := map[string]*int{
		"position":     &f.Position,
		"points":       &f.Points,
		"goal_diff":    &f.GoalDiff,
		"venue_points": &f.VenuePoints,
		"matches_used": &f.MatchesUsed,
	}
	for k, dst := range ints {
		v, ok := h[k]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("form field %s: %w", k, err)
		}
		*dst = n
	}

	f.Defaulted, _ = strconv.ParseBool(h["defaulted"])
	if ts, err := time.Parse(time.RFC3339, h["updated_at"]); err == nil {
		f.UpdatedAt = ts
	}
	return f, nil
}
