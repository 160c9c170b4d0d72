package features

import (
	"sort"
	"time"

	"github.com/footyliveliness/api/internal/models"
)

// History is an immutable, chronologically ordered set of finished matches
type History struct {
	matches []models.MatchResult
}

// NewHistory copies results and orders them by kickoff, then round, then match ID.
func NewHistory(results []models.MatchResult) *History {
	matches := make([]models.MatchResult, len(results))
	copy(matches, results)

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.Kickoff.Equal(b.Kickoff) {
			return a.Kickoff.Before(b.Kickoff)
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.MatchID < b.MatchID
	})

	return &History{matches: matches}
}

// Len returns the number of matches in the history
func (h *History) Len() int {
	return len(h.matches)
}

// All returns every match, oldest first. The slice must not be modified.
func (h *History) All() []models.MatchResult {
	return h.matches
}

// Before returns the matches kicked off strictly before cutoff, oldest first.
// A zero cutoff returns the whole history.
func (h *History) Before(cutoff time.Time) []models.MatchResult {
	if cutoff.IsZero() {
		return h.matches
	}
	n := sort.Search(len(h.matches), func(i int) bool {
		return !h.matches[i].Kickoff.Before(cutoff)
	})
	return h.matches[:n]
}

// Teams returns every team that appears in the history, sorted by name
func (h *History) Teams() []string {
	seen := make(map[string]struct{})
	for i := range h.matches {
		seen[h.matches[i].HomeTeam] = struct{}{}
		seen[h.matches[i].AwayTeam] = struct{}{}
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}

// Has reports whether team played at least one match in the history
func (h *History) Has(team string) bool {
	for i := range h.matches {
		if h.matches[i].Involves(team) {
			return true
		}
	}
	return false
}

// teamMatches returns the team's matches from prior, newest first, optionally restricted to one venue.
func teamMatches(prior []models.MatchResult, team string, venue models.Venue, limit int) []models.MatchResult {
	var out []models.MatchResult
	for i := len(prior) - 1; i >= 0; i-- {
		m := prior[i]
		switch venue {
		case models.VenueHome:
			if m.HomeTeam != team {
				continue
			}
		case models.VenueAway:
			if m.AwayTeam != team {
				continue
			}
		default:
			if !m.Involves(team) {
				continue
			}
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
