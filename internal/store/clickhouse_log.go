package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/footyliveliness/api/internal/models"
)

// ClickHouseSchema creates the prediction log table
const ClickHouseSchema = `
CREATE TABLE IF NOT EXISTS prediction_log (
	created_at  DateTime64(3),
	run_id      UUID,
	match_id    String,
	round       UInt16,
	home_team   LowCardinality(String),
	away_team   LowCardinality(String),
	predicted   Float64,
	actual      Nullable(Float64),
	model       LowCardinality(String)
) ENGINE = MergeTree
ORDER BY (created_at, run_id)
`

// ClickHousePredictionLog appends ranking runs to ClickHouse for later accuracy analysis
type ClickHousePredictionLog struct {
	ch driver.Conn
}

func NewClickHousePredictionLog(ch driver.Conn) *ClickHousePredictionLog {
	return &ClickHousePredictionLog{ch: ch}
}

// Migrate creates the log table if it does not exist
func (l *ClickHousePredictionLog) Migrate(ctx context.Context) error {
	if err := l.ch.Exec(ctx, ClickHouseSchema); err != nil {
		return fmt.Errorf("migrating prediction_log: %w", err)
	}
	return nil
}

func (l *ClickHousePredictionLog) Ping(ctx context.Context) error {
	return l.ch.Ping(ctx)
}

// LogPredictions writes records in a single batch insert
func (l *ClickHousePredictionLog) LogPredictions(ctx context.Context, records []models.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := l.ch.PrepareBatch(ctx, `
		INSERT INTO prediction_log (
			created_at, run_id, match_id, round, home_team, away_team, predicted, actual, model
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		var actual *float64
		if r.HasActual {
			v := r.Actual
			actual = &v
		}
		if err := batch.Append(
			r.CreatedAt,
			r.RunID,
			r.MatchID,
			uint16(r.Round),
			r.HomeTeam,
			r.AwayTeam,
			r.Predicted,
			actual,
			r.Model,
		); err != nil {
			return fmt.Errorf("append %s: %w", r.MatchID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}
