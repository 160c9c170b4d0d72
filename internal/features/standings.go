package features

import (
	"sort"
	"time"

	"github.com/footyliveliness/api/internal/models"
)

// Table is a league table keyed by team name
type Table struct {
	Rows   []models.StandingRow
	byTeam map[string]int
}

// Row returns the standing of team and whether it is in the table
func (t *Table) Row(team string) (models.StandingRow, bool) {
	i, ok := t.byTeam[team]
	if !ok {
		return models.StandingRow{}, false
	}
	return t.Rows[i], true
}

// Standings builds the league table from matches kicked off strictly before
// cutoff. Every team in the history plus any extra teams gets a row; teams
// without matches sit below those with matches, alphabetically.
func Standings(h *History, cutoff time.Time, extra ...string) *Table {
	return standingsFrom(h.Before(cutoff), append(h.Teams(), extra...))
}

func standingsFrom(prior []models.MatchResult, teams []string) *Table {
	entries := make(map[string]*models.StandingRow, len(teams))
	for _, team := range teams {
		if _, ok := entries[team]; !ok {
			entries[team] = &models.StandingRow{Team: team}
		}
	}

	row := func(team string) *models.StandingRow {
		e, ok := entries[team]
		if !ok {
			e = &models.StandingRow{Team: team}
			entries[team] = e
		}
		return e
	}

	for i := range prior {
		m := &prior[i]
		home, away := row(m.HomeTeam), row(m.AwayTeam)

		home.Played++
		away.Played++
		home.GoalsFor += m.HomeGoals
		home.GoalsAgainst += m.AwayGoals
		away.GoalsFor += m.AwayGoals
		away.GoalsAgainst += m.HomeGoals

		switch {
		case m.HomeGoals > m.AwayGoals:
			home.Won++
			away.Lost++
			home.Points += 3
			home.HomePoints += 3
		case m.HomeGoals < m.AwayGoals:
			away.Won++
			home.Lost++
			away.Points += 3
			away.AwayPoints += 3
		default:
			home.Drawn++
			away.Drawn++
			home.Points++
			away.Points++
			home.HomePoints++
			away.AwayPoints++
		}
	}

	rows := make([]models.StandingRow, 0, len(entries))
	for _, e := range entries {
		e.GoalDiff = e.GoalsFor - e.GoalsAgainst
		rows = append(rows, *e)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Played == 0) != (b.Played == 0) {
			return a.Played > 0
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})

	t := &Table{Rows: rows, byTeam: make(map[string]int, len(rows))}
	for i := range t.Rows {
		t.Rows[i].Position = i + 1
		t.byTeam[t.Rows[i].Team] = i
	}
	return t
}
