package features

import (
	"math"

	"github.com/footyliveliness/api/internal/models"
)

// LivelinessFromXG is total xG plus the smaller side's xG. A one-sided match
// scores lower than an even one with the same total.
func LivelinessFromXG(home, away float64) float64 {
	return home + away + math.Min(home, away)
}

// Liveliness labels a finished match
func Liveliness(r models.MatchResult) float64 {
	return LivelinessFromXG(r.HomeXG, r.AwayXG)
}
