package ranking

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/footyliveliness/api/internal/models"
)

// ErrInvalidFilter wraps compile and type errors in a filter expression
var ErrInvalidFilter = errors.New("invalid filter expression")

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("match", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("prediction", cel.MapType(cel.StringType, cel.DynType)),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return celEnv, celEnvErr
}

// Filter is a compiled boolean expression over a ranked match.
//
// Available fields:
//   - match.id, match.round, match.home, match.away, match.status, match.date,
//     match.home_position, match.away_position, match.high_stakes
//   - prediction.liveliness, prediction.confidence, prediction.actual,
//     prediction.has_actual (prediction.actual is null until the match is finished)
//
// Example: prediction.liveliness > 4.0 && match.round == 16
//
// A match the expression cannot be evaluated against, such as a comparison on a
// null prediction.actual, does not match. A nil Filter matches everything.
type Filter struct {
	expr string
	prg  cel.Program
}

// CompileFilter parses and type-checks expr. An empty expression returns a nil filter.
func CompileFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression must return bool, got %v", ErrInvalidFilter, out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against m. Only a non-bool result is an error.
func (f *Filter) Match(m *models.RankedMatch) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(buildInput(m))
	if err != nil {
		return false, nil
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: expression must return bool, got %T", ErrInvalidFilter, out.Value())
	}
	return result, nil
}

func buildInput(m *models.RankedMatch) map[string]any {
	var actual any
	if m.ActualLiveliness != nil {
		actual = *m.ActualLiveliness
	}

	return map[string]any{
		"match": map[string]any{
			"id":            m.MatchID,
			"round":         int64(m.Round),
			"home":          m.HomeTeam,
			"away":          m.AwayTeam,
			"status":        string(m.Status),
			"date":          m.Date,
			"home_position": int64(m.HomePosition),
			"away_position": int64(m.AwayPosition),
			"high_stakes":   m.IsHighStakes,
		},
		"prediction": map[string]any{
			"liveliness": m.PredictedLiveliness,
			"confidence": int64(m.Confidence),
			"actual":     actual,
			"has_actual": m.ActualLiveliness != nil,
		},
	}
}
