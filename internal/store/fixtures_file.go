package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/footyliveliness/api/internal/models"
)

// Fixture files in preference order
const (
	AllFixturesFile      = "all_fixtures.json"
	UpcomingFixturesFile = "upcoming_fixtures.json"
	SampleSource         = "sample"
)

// FileFixtureSource reads scraped fixture feeds from a directory
type FileFixtureSource struct {
	dir string
}

func NewFileFixtureSource(dir string) *FileFixtureSource {
	return &FileFixtureSource{dir: dir}
}

// Load returns fixtures from the first feed file found, falling back to the
// built-in sample fixtures. The second return value names the source used.
func (s *FileFixtureSource) Load(ctx context.Context) ([]models.Fixture, string, error) {
	for _, name := range []string{AllFixturesFile, UpcomingFixturesFile} {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", name, err)
		}
		fixtures, err := DecodeFixtures(data)
		if err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", name, err)
		}
		return fixtures, name, nil
	}
	return SampleFixtures(), SampleSource, nil
}

// feedFixture accepts numeric match IDs and derives kickoff from date and time
type feedFixture struct {
	models.Fixture
	MatchID any `json:"matchId"`
}

// DecodeFixtures parses a fixture feed. Kickoff is taken from the "kickoff"
// field or, when absent, from "date" and "time" read as UTC.
func DecodeFixtures(data []byte) ([]models.Fixture, error) {
	var raw []feedFixture
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	fixtures := make([]models.Fixture, 0, len(raw))
	for _, r := range raw {
		f := r.Fixture
		switch id := r.MatchID.(type) {
		case string:
			f.MatchID = id
		case float64:
			f.MatchID = strconv.FormatInt(int64(id), 10)
		}
		if f.Kickoff.IsZero() && f.Date != "" {
			layout, value := "2006-01-02", f.Date
			if f.Time != "" {
				layout, value = "2006-01-02 15:04", f.Date+" "+f.Time
			}
			if t, err := time.Parse(layout, value); err == nil {
				f.Kickoff = t
			}
		}
		if f.Status == "" {
			f.Status = models.StatusUpcoming
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// SampleFixtures is the fixture list served before any feed has been scraped
func SampleFixtures() []models.Fixture {
	kickoff := func(day, hour, min int) time.Time {
		return time.Date(2025, time.December, day, hour, min, 0, 0, time.UTC)
	}
	fx := func(id string, home, away string, homeID, awayID int64, ko time.Time, features map[string]float64) models.Fixture {
		return models.Fixture{
			MatchID:    id,
			Season:     "2025/26",
			Round:      15,
			HomeTeam:   home,
			AwayTeam:   away,
			HomeTeamID: homeID,
			AwayTeamID: awayID,
			Date:       ko.Format("2006-01-02"),
			Time:       ko.Format("15:04"),
			Kickoff:    ko,
			Status:     models.StatusUpcoming,
			Features:   features,
		}
	}

	return []models.Fixture{
		fx("sample-1", "Liverpool", "Manchester City", 8650, 8456, kickoff(14, 20, 0), map[string]float64{
			"home_xG_att_90": 2.3, "home_SoT_att_90": 5.2, "home_BigCh_att_90": 3.2, "home_Corn_att_90": 6.4,
			"home_ToB_att_90": 18.5, "home_xGA_def_90": 0.9, "home_SoT_agst_90": 3.1, "home_BigCh_agst_90": 1.8,
			"away_xG_att_90": 2.1, "away_SoT_att_90": 4.9, "away_BigCh_att_90": 2.8, "away_Corn_att_90": 5.8,
			"away_ToB_att_90": 17.2, "away_xGA_def_90": 1.0, "away_SoT_agst_90": 3.3, "away_BigCh_agst_90": 1.2,
			"home_position": 1, "away_position": 2, "points_diff": 3, "gd_diff": 5,
			"home_last3_points": 9, "home_last3_goals": 8, "home_form_trend": 2,
			"away_last3_points": 7, "away_last3_goals": 6, "away_form_trend": 1,
		}),
		fx("sample-2", "Arsenal", "Chelsea", 9825, 8455, kickoff(14, 22, 30), map[string]float64{
			"home_position": 3, "away_position": 5, "points_diff": 4, "gd_diff": 6,
		}),
		fx("sample-3", "Manchester United", "Tottenham", 10260, 8586, kickoff(15, 19, 0), map[string]float64{
			"home_position": 8, "away_position": 10, "points_diff": 2, "gd_diff": 1,
		}),
		fx("sample-4", "Newcastle", "Aston Villa", 10261, 10252, kickoff(15, 21, 30), map[string]float64{
			"home_position": 6, "away_position": 7, "points_diff": 1, "gd_diff": 3,
		}),
		fx("sample-5", "Brighton", "Brentford", 10204, 9937, kickoff(14, 17, 30), map[string]float64{
			"home_position": 9, "away_position": 12, "points_diff": 4, "gd_diff": 2,
		}),
		fx("sample-6", "Wolves", "Bournemouth", 8602, 8678, kickoff(14, 20, 0), map[string]float64{
			"home_position": 17, "away_position": 14, "points_diff": -5, "gd_diff": -9,
		}),
	}
}
