package models

import "time"

// FixtureStatus mirrors the status strings used by the fixture feed
type FixtureStatus string

const (
	StatusUpcoming FixtureStatus = "upcoming"
	StatusOngoing  FixtureStatus = "ongoing"
	StatusFinished FixtureStatus = "finished"
)

// Venue selects which side of a fixture a team played on
type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// MatchResult is one finished match with the raw per-side statistics the
// rolling features are computed from. Scraped feeds often quote numbers, see
// UnmarshalJSON in flex_json.go.
type MatchResult struct {
	MatchID    string    `json:"match_id" validate:"required"`
	Season     string    `json:"season"`
	Round      int       `json:"round" validate:"gte=0"`
	Kickoff    time.Time `json:"kickoff"`
	HomeTeam   string    `json:"home_team" validate:"required"`
	AwayTeam   string    `json:"away_team" validate:"required,nefield=HomeTeam"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`

	HomeGoals int `json:"home_goals" validate:"gte=0"`
	AwayGoals int `json:"away_goals" validate:"gte=0"`

	HomeXG            float64 `json:"home_xg" validate:"gte=0"`
	AwayXG            float64 `json:"away_xg" validate:"gte=0"`
	HomeShotsOnTarget int     `json:"home_shots_on_target" validate:"gte=0"`
	AwayShotsOnTarget int     `json:"away_shots_on_target" validate:"gte=0"`
	HomeBigChances    int     `json:"home_big_chances" validate:"gte=0"`
	AwayBigChances    int     `json:"away_big_chances" validate:"gte=0"`
	HomeCorners       int     `json:"home_corners" validate:"gte=0"`
	AwayCorners       int     `json:"away_corners" validate:"gte=0"`
	HomeTouchesOppBox int     `json:"home_touches_opp_box" validate:"gte=0"`
	AwayTouchesOppBox int     `json:"away_touches_opp_box" validate:"gte=0"`
	HomeShots         int     `json:"home_shots" validate:"gte=0"`
	AwayShots         int     `json:"away_shots" validate:"gte=0"`
}

// Involves reports whether team played in the match
func (m *MatchResult) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// PointsFor returns the league points team earned in the match
func (m *MatchResult) PointsFor(team string) int {
	gf, ga := m.GoalsFor(team), m.GoalsAgainst(team)
	switch {
	case gf > ga:
		return 3
	case gf == ga:
		return 1
	default:
		return 0
	}
}

// GoalsFor returns goals scored by team
func (m *MatchResult) GoalsFor(team string) int {
	if m.HomeTeam == team {
		return m.HomeGoals
	}
	return m.AwayGoals
}

// GoalsAgainst returns goals conceded by team
func (m *MatchResult) GoalsAgainst(team string) int {
	if m.HomeTeam == team {
		return m.AwayGoals
	}
	return m.HomeGoals
}

// XGPair is the actual expected-goals line of a finished fixture
type XGPair struct {
	Home     float64 `json:"home"`
	Away     float64 `json:"away"`
	Total    float64 `json:"total"`
	SimpleXG float64 `json:"simple_xg"`
}

// Score is the final scoreline of a finished fixture
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Fixture is a scheduled (or already played) match as published by the
// fixture feed. Features, when present, override derived feature values.
type Fixture struct {
	MatchID     string             `json:"matchId,omitempty"`
	Season      string             `json:"season,omitempty"`
	Round       int                `json:"round"`
	HomeTeam    string             `json:"home"`
	AwayTeam    string             `json:"away"`
	HomeTeamID  int64              `json:"homeTeamId,omitempty"`
	AwayTeamID  int64              `json:"awayTeamId,omitempty"`
	Date        string             `json:"date,omitempty"`
	Time        string             `json:"time,omitempty"`
	Kickoff     time.Time          `json:"kickoff"`
	Status      FixtureStatus      `json:"status"`
	ActualXG    *XGPair            `json:"actualXG,omitempty"`
	ActualScore *Score             `json:"actualScore,omitempty"`
	Features    map[string]float64 `json:"features,omitempty"`
}

// IsFinished reports whether the fixture has a final result
func (f *Fixture) IsFinished() bool {
	return f.Status == StatusFinished
}

// TeamForm is the rolling feature snapshot for one team at one venue
type TeamForm struct {
	Team  string `json:"team"`
	Venue Venue  `json:"venue"`

	XGAtt90     float64 `json:"xG_att_90"`
	SoTAtt90    float64 `json:"SoT_att_90"`
	BigChAtt90  float64 `json:"BigCh_att_90"`
	CornAtt90   float64 `json:"Corn_att_90"`
	ToBAtt90    float64 `json:"ToB_att_90"`
	XGADef90    float64 `json:"xGA_def_90"`
	SoTAgst90   float64 `json:"SoT_agst_90"`
	BigChAgst90 float64 `json:"BigCh_agst_90"`

	Position      int     `json:"position"`
	Points        int     `json:"points"`
	GoalDiff      int     `json:"goal_diff"`
	VenuePoints   int     `json:"venue_points"`
	Last3Points   float64 `json:"last3_points"`
	Last3Goals    float64 `json:"last3_goals"`
	FormTrend     float64 `json:"form_trend"`
	StrengthRatio float64 `json:"strength_ratio"`
	FormString    string  `json:"form"`

	MatchesUsed int       `json:"matches_used"`
	Defaulted   bool      `json:"defaulted"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StandingRow is one line of the league table at a point in time
type StandingRow struct {
	Team         string `json:"team"`
	Position     int    `json:"position"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
	Points       int    `json:"points"`
	HomePoints   int    `json:"home_points"`
	AwayPoints   int    `json:"away_points"`
}
