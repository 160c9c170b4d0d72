package features

import (
	"strings"
	"time"

	"github.com/footyliveliness/api/internal/models"
)

const (
	// FormWindow is the number of most recent matches in the short-form stats
	FormWindow = 3
	// PrevWindow is the number of matches before the short form compared against it
	PrevWindow = 5

	defaultLast3Points = 5.0
	defaultLast3Goals  = 4.0
	neutralStrength    = 0.5
)

// FormStats describe a team's recent results over any venue
type FormStats struct {
	Last3Points float64
	Last3Goals  float64
	PrevPoints  float64 // previous matches scaled to FormWindow matches
	FormTrend   float64
	Matches     int
	Recent      string // up to five results oldest first, e.g. "WWDLW"
}

// Form computes the short-form stats of team from matches before cutoff.
func Form(h *History, team string, cutoff time.Time) FormStats {
	return formFrom(h.Before(cutoff), team)
}

func formFrom(prior []models.MatchResult, team string) FormStats {
	recent := teamMatches(prior, team, "", FormWindow+PrevWindow)
	fs := FormStats{Matches: len(recent), Recent: formString(recent, team)}

	if len(recent) < FormWindow {
		fs.Last3Points = defaultLast3Points
		fs.Last3Goals = defaultLast3Goals
		return fs
	}

	for i := 0; i < FormWindow; i++ {
		fs.Last3Points += float64(recent[i].PointsFor(team))
		fs.Last3Goals += float64(recent[i].GoalsFor(team))
	}

	prev := recent[FormWindow:]
	if len(prev) == 0 {
		return fs
	}
	var pts float64
	for i := range prev {
		pts += float64(prev[i].PointsFor(team))
	}
	fs.PrevPoints = pts / float64(len(prev)) * FormWindow
	fs.FormTrend = fs.Last3Points - fs.PrevPoints
	return fs
}

// formString renders up to five results oldest first; recent is newest first.
func formString(recent []models.MatchResult, team string) string {
	n := len(recent)
	if n > 5 {
		n = 5
	}
	var b strings.Builder
	for i := n - 1; i >= 0; i-- {
		switch recent[i].PointsFor(team) {
		case 3:
			b.WriteByte('W')
		case 1:
			b.WriteByte('D')
		default:
			b.WriteByte('L')
		}
	}
	return b.String()
}

// StrengthRatio is the share of a team's points won at one venue, damped by +1.
// Teams without a match get 0.5.
func StrengthRatio(row models.StandingRow, venue models.Venue) float64 {
	if row.Played == 0 {
		return neutralStrength
	}
	venuePoints := row.HomePoints
	if venue == models.VenueAway {
		venuePoints = row.AwayPoints
	}
	return float64(venuePoints) / float64(row.Points+1)
}
