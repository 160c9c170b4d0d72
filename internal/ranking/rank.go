package ranking

import (
	"sort"

	"github.com/footyliveliness/api/internal/models"
)

// Rank orders matches by predicted liveliness, highest first, and numbers them
// from 1. Equal scores keep their input order. The input slice is not modified.
func Rank(matches []models.RankedMatch) []models.RankedMatch {
	out := make([]models.RankedMatch, len(matches))
	copy(out, matches)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedLiveliness > out[j].PredictedLiveliness
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Apply filters matches by round, status and expression, ranks what is left
// and truncates to the query limit.
func Apply(matches []models.RankedMatch, q models.RankingQuery) ([]models.RankedMatch, error) {
	filter, err := CompileFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	kept := make([]models.RankedMatch, 0, len(matches))
	for _, m := range matches {
		if q.Round != nil && m.Round != *q.Round {
			continue
		}
		if q.Status != "" && m.Status != q.Status {
			continue
		}
		ok, err := filter.Match(&m)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, m)
		}
	}

	ranked := Rank(kept)
	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}
	return ranked, nil
}
