package features

import (
	"time"

	"github.com/footyliveliness/api/internal/models"
)

const (
	// Window is the number of most recent venue matches averaged
	Window = 5
	// MinMatches is the least number of venue matches before league defaults stop applying
	MinMatches = 3
)

// VenueStats are per-90 attacking and defensive averages for one team at one venue
type VenueStats struct {
	XGAtt     float64
	SoTAtt    float64
	BigChAtt  float64
	CornAtt   float64
	ToBAtt    float64
	XGADef    float64
	SoTAgst   float64
	BigChAgst float64

	Matches   int
	Defaulted bool
}

// DefaultVenueStats are league-average values used for teams with too little history
var DefaultVenueStats = VenueStats{
	XGAtt:     1.5,
	SoTAtt:    4.0,
	BigChAtt:  2.0,
	CornAtt:   5.0,
	ToBAtt:    15.0,
	XGADef:    1.5,
	SoTAgst:   4.0,
	BigChAgst: 2.0,
	Defaulted: true,
}

// RollingTeamStats averages the team's last Window matches at venue that kicked
// off strictly before cutoff. Fewer than MinMatches yields DefaultVenueStats.
func RollingTeamStats(h *History, team string, venue models.Venue, cutoff time.Time) VenueStats {
	return rollingFrom(h.Before(cutoff), team, venue)
}

func rollingFrom(prior []models.MatchResult, team string, venue models.Venue) VenueStats {
	recent := teamMatches(prior, team, venue, Window)
	if len(recent) < MinMatches {
		s := DefaultVenueStats
		s.Matches = len(recent)
		return s
	}

	var s VenueStats
	for i := range recent {
		m := &recent[i]
		if m.HomeTeam == team {
			s.XGAtt += m.HomeXG
			s.SoTAtt += float64(m.HomeShotsOnTarget)
			s.BigChAtt += float64(m.HomeBigChances)
			s.CornAtt += float64(m.HomeCorners)
			s.ToBAtt += float64(m.HomeTouchesOppBox)
			s.XGADef += m.AwayXG
			s.SoTAgst += float64(m.AwayShotsOnTarget)
			s.BigChAgst += float64(m.AwayBigChances)
		} else {
			s.XGAtt += m.AwayXG
			s.SoTAtt += float64(m.AwayShotsOnTarget)
			s.BigChAtt += float64(m.AwayBigChances)
			s.CornAtt += float64(m.AwayCorners)
			s.ToBAtt += float64(m.AwayTouchesOppBox)
			s.XGADef += m.HomeXG
			s.SoTAgst += float64(m.HomeShotsOnTarget)
			s.BigChAgst += float64(m.HomeBigChances)
		}
	}

	n := float64(len(recent))
	s.XGAtt /= n
	s.SoTAtt /= n
	s.BigChAtt /= n
	s.CornAtt /= n
	s.ToBAtt /= n
	s.XGADef /= n
	s.SoTAgst /= n
	s.BigChAgst /= n
	s.Matches = len(recent)
	return s
}
