package features

import (
	"math"
	"time"

	"github.com/footyliveliness/api/internal/models"
)

// FeatureSet maps feature names to values
type FeatureSet map[string]float64

// Vector lays out set in names order. Missing names are 0.
func Vector(set FeatureSet, names []string) []float64 {
	out := make([]float64, len(names))
	for i, name := range names {
		out[i] = set[name]
	}
	return out
}

// IsHighStakes reports a top-six or bottom-six clash
func IsHighStakes(set FeatureSet) bool {
	return set[BothTop6] == 1 || set[BothBottom6] == 1
}

// Compose fills the composite features from the base values already in set.
func Compose(set FeatureSet) FeatureSet {
	hxG, axG := set[HomeXGAtt], set[AwayXGAtt]
	hSoT, aSoT := set[HomeSoTAtt], set[AwaySoTAtt]

	set[TempoSum] = hxG + axG + hSoT + aSoT
	set[SoTSum] = hSoT + aSoT
	set[AttackVsDefense] = (hxG - set[AwayXGADef]) + (axG - set[HomeXGADef])
	set[XGAttSum] = hxG + axG
	set[XGAttMin] = math.Min(hxG, axG)
	set[BigChSum] = set[HomeBigChAtt] + set[AwayBigChAtt]

	hp, ap := set[HomePosition], set[AwayPosition]
	set[PositionDiff] = hp - ap
	set[BothTop6] = boolFeature(hp <= 6 && ap <= 6)
	set[BothBottom6] = boolFeature(hp >= 15 && ap >= 15)
	set[ClosePositions] = boolFeature(math.Abs(hp-ap) <= 3)
	return set
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Builder derives fixture features from match history
type Builder struct {
	history *History
}

func NewBuilder(h *History) *Builder {
	return &Builder{history: h}
}

// History returns the builder's match history
func (b *Builder) History() *History {
	return b.history
}

// Build returns the full feature set of f using only matches kicked off before
// it. Explicit base values on the fixture replace derived ones; composites are
// always recomputed.
func (b *Builder) Build(f models.Fixture) FeatureSet {
	set, _, _ := b.BuildDetailed(f)
	return set
}

// BuildDetailed is Build that also returns the two team snapshots the features came from.
func (b *Builder) BuildDetailed(f models.Fixture) (FeatureSet, models.TeamForm, models.TeamForm) {
	prior := b.history.Before(f.Kickoff)
	table := standingsFrom(prior, append(b.history.Teams(), f.HomeTeam, f.AwayTeam))

	home := snapshotFrom(prior, table, f.HomeTeam, models.VenueHome)
	away := snapshotFrom(prior, table, f.AwayTeam, models.VenueAway)

	return Override(baseFromForms(home, away), f.Features), home, away
}

// TeamForm returns the rolling snapshot of team at venue before cutoff
func (b *Builder) TeamForm(team string, venue models.Venue, cutoff time.Time) models.TeamForm {
	prior := b.history.Before(cutoff)
	table := standingsFrom(prior, append(b.history.Teams(), team))
	return snapshotFrom(prior, table, team, venue)
}

// FromForms builds a feature set from two stored snapshots
func FromForms(home, away models.TeamForm) FeatureSet {
	return Compose(baseFromForms(home, away))
}

// FromExplicit composes a feature set from caller-supplied base values only.
// Base values not supplied are 0.
func FromExplicit(values map[string]float64) FeatureSet {
	set := make(FeatureSet, len(Names))
	for _, name := range Names {
		set[name] = 0
	}
	return Override(set, values)
}

// Override replaces base values in set with values and recomputes the composites.
// Composite names in values are ignored.
func Override(set FeatureSet, values map[string]float64) FeatureSet {
	for name, v := range values {
		if !IsComposite(name) {
			set[name] = v
		}
	}
	return Compose(set)
}

func snapshotFrom(prior []models.MatchResult, table *Table, team string, venue models.Venue) models.TeamForm {
	vs := rollingFrom(prior, team, venue)
	fs := formFrom(prior, team)
	row, _ := table.Row(team)

	venuePoints := row.HomePoints
	if venue == models.VenueAway {
		venuePoints = row.AwayPoints
	}

	return models.TeamForm{
		Team:          team,
		Venue:         venue,
		XGAtt90:       vs.XGAtt,
		SoTAtt90:      vs.SoTAtt,
		BigChAtt90:    vs.BigChAtt,
		CornAtt90:     vs.CornAtt,
		ToBAtt90:      vs.ToBAtt,
		XGADef90:      vs.XGADef,
		SoTAgst90:     vs.SoTAgst,
		BigChAgst90:   vs.BigChAgst,
		Position:      row.Position,
		Points:        row.Points,
		GoalDiff:      row.GoalDiff,
		VenuePoints:   venuePoints,
		Last3Points:   fs.Last3Points,
		Last3Goals:    fs.Last3Goals,
		FormTrend:     fs.FormTrend,
		StrengthRatio: StrengthRatio(row, venue),
		FormString:    fs.Recent,
		MatchesUsed:   vs.Matches,
		Defaulted:     vs.Defaulted,
	}
}

func baseFromForms(home, away models.TeamForm) FeatureSet {
	return FeatureSet{
		HomeXGAtt:     home.XGAtt90,
		HomeSoTAtt:    home.SoTAtt90,
		HomeBigChAtt:  home.BigChAtt90,
		HomeCornAtt:   home.CornAtt90,
		HomeToBAtt:    home.ToBAtt90,
		HomeXGADef:    home.XGADef90,
		HomeSoTAgst:   home.SoTAgst90,
		HomeBigChAgst: home.BigChAgst90,

		AwayXGAtt:     away.XGAtt90,
		AwaySoTAtt:    away.SoTAtt90,
		AwayBigChAtt:  away.BigChAtt90,
		AwayCornAtt:   away.CornAtt90,
		AwayToBAtt:    away.ToBAtt90,
		AwayXGADef:    away.XGADef90,
		AwaySoTAgst:   away.SoTAgst90,
		AwayBigChAgst: away.BigChAgst90,

		HomePosition: float64(home.Position),
		AwayPosition: float64(away.Position),
		PointsDiff:   float64(home.Points - away.Points),
		GDDiff:       float64(home.GoalDiff - away.GoalDiff),

		HomeLast3Points: home.Last3Points,
		HomeLast3Goals:  home.Last3Goals,
		HomeFormTrend:   home.FormTrend,
		AwayLast3Points: away.Last3Points,
		AwayLast3Goals:  away.Last3Goals,
		AwayFormTrend:   away.FormTrend,

		HomeStrengthRatio: home.StrengthRatio,
		AwayStrengthRatio: away.StrengthRatio,
	}
}
