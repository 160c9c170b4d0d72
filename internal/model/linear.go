package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/footyliveliness/api/internal/models"
)

// ErrFeatureWidth is returned when an input vector does not match the artifact's feature count
var ErrFeatureWidth = errors.New("feature vector width mismatch")

const confidenceCentre = 4.5

// Linear applies the standard scaler followed by the linear model of an artifact.
// It is read-only after construction and safe for concurrent use.
type Linear struct {
	art   *Artifact
	names []string
}

func NewLinear(a *Artifact) (*Linear, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	return &Linear{art: a, names: a.FeatureNames()}, nil
}

func (m *Linear) Artifact() *Artifact { return m.art }
func (m *Linear) FeatureNames() []string { return m.names }

// Scale standardises x with the artifact's per-feature mean and scale.
// A zero scale leaves the centred value unscaled.
func (m *Linear) Scale(x []float64) ([]float64, error) {
	if len(x) != len(m.art.Features) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureWidth, len(x), len(m.art.Features))
	}
	out := make([]float64, len(x))
	for i, f := range m.art.Features {
		scale := f.Scale
		if scale == 0 {
			scale = 1
		}
		out[i] = (x[i] - f.Mean) / scale
	}
	return out, nil
}

// Predict returns intercept + coef·scale(x), clipped to the artifact's range.
func (m *Linear) Predict(x []float64) (float64, error) {
	scaled, err := m.Scale(x)
	if err != nil {
		return 0, err
	}
	score := m.art.Intercept
	for i, f := range m.art.Features {
		score += f.Coef * scaled[i]
	}
	return clip(score, m.art.Clip.Min, m.art.Clip.Max), nil
}

// Contributions returns each feature's coef·scaled value, largest magnitude first.
func (m *Linear) Contributions(x []float64) ([]models.Factor, error) {
	scaled, err := m.Scale(x)
	if err != nil {
		return nil, err
	}
	factors := make([]models.Factor, len(scaled))
	for i, f := range m.art.Features {
		factors[i] = models.Factor{
			Feature:      f.Name,
			Value:        x[i],
			Contribution: f.Coef * scaled[i],
		}
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Contribution) > math.Abs(factors[j].Contribution)
	})
	return factors, nil
}

// TopCoefficients lists the n largest coefficients by magnitude
func (m *Linear) TopCoefficients(n int) []models.Factor {
	factors := make([]models.Factor, len(m.art.Features))
	for i, f := range m.art.Features {
		factors[i] = models.Factor{Feature: f.Name, Contribution: f.Coef}
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Contribution) > math.Abs(factors[j].Contribution)
	})
	if n > 0 && n < len(factors) {
		factors = factors[:n]
	}
	return factors
}

// Confidence scores how much to trust a prediction, in percent [50, 95].
// It rises with input completeness, falls as the score moves away from a
// typical match and gets a bonus for high-stakes fixtures.
func Confidence(x []float64, score float64, highStakes bool) int {
	completeness := 0.0
	if len(x) > 0 {
		var nonZero int
		for _, v := range x {
			if v != 0 {
				nonZero++
			}
		}
		completeness = float64(nonZero) / float64(len(x))
	}

	c := 50 + 40*completeness - 3*math.Abs(score-confidenceCentre)
	if highStakes {
		c += 5
	}
	return int(math.Round(clip(c, 50, 95)))
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clip(v, lo, hi float64) float64 {
	if lo > hi {
		return v
	}
	return math.Max(lo, math.Min(hi, v))
}
