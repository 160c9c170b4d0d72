package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/footyliveliness/api/internal/models"
)

// PgPool is the subset of *pgxpool.Pool the match store needs
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Ping(ctx context.Context) error
}

// PostgresSchema creates the match store tables
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS match_results (
	match_id             TEXT PRIMARY KEY,
	season               TEXT NOT NULL DEFAULT '',
	round                INT NOT NULL DEFAULT 0,
	kickoff              TIMESTAMPTZ NOT NULL,
	home_team            TEXT NOT NULL,
	away_team            TEXT NOT NULL,
	home_team_id         BIGINT NOT NULL DEFAULT 0,
	away_team_id         BIGINT NOT NULL DEFAULT 0,
	home_goals           INT NOT NULL,
	away_goals           INT NOT NULL,
	home_xg              DOUBLE PRECISION NOT NULL,
	away_xg              DOUBLE PRECISION NOT NULL,
	home_shots_on_target INT NOT NULL DEFAULT 0,
	away_shots_on_target INT NOT NULL DEFAULT 0,
	home_big_chances     INT NOT NULL DEFAULT 0,
	away_big_chances     INT NOT NULL DEFAULT 0,
	home_corners         INT NOT NULL DEFAULT 0,
	away_corners         INT NOT NULL DEFAULT 0,
	home_touches_opp_box INT NOT NULL DEFAULT 0,
	away_touches_opp_box INT NOT NULL DEFAULT 0,
	home_shots           INT NOT NULL DEFAULT 0,
	away_shots           INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_match_results_kickoff ON match_results (kickoff);

CREATE TABLE IF NOT EXISTS fixtures (
	match_id     TEXT PRIMARY KEY,
	season       TEXT NOT NULL DEFAULT '',
	round        INT NOT NULL DEFAULT 0,
	home_team    TEXT NOT NULL,
	away_team    TEXT NOT NULL,
	home_team_id BIGINT NOT NULL DEFAULT 0,
	away_team_id BIGINT NOT NULL DEFAULT 0,
	date         TEXT NOT NULL DEFAULT '',
	time         TEXT NOT NULL DEFAULT '',
	kickoff      TIMESTAMPTZ,
	status       TEXT NOT NULL DEFAULT 'upcoming',
	payload      JSONB NOT NULL
);
`

const resultColumns = `match_id, season, round, kickoff, home_team, away_team, home_team_id, away_team_id,
	home_goals, away_goals, home_xg, away_xg,
	home_shots_on_target, away_shots_on_target, home_big_chances, away_big_chances,
	home_corners, away_corners, home_touches_opp_box, away_touches_opp_box, home_shots, away_shots`

// PostgresMatchStore keeps results and fixtures in PostgreSQL through pgx
type PostgresMatchStore struct {
	pg PgPool
}

func NewPostgresMatchStore(pg PgPool) *PostgresMatchStore {
	return &PostgresMatchStore{pg: pg}
}

// Migrate creates the tables if they do not exist
func (s *PostgresMatchStore) Migrate(ctx context.Context) error {
	if _, err := s.pg.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	return nil
}

func (s *PostgresMatchStore) Ping(ctx context.Context) error {
	return s.pg.Ping(ctx)
}

// ListResults returns finished matches oldest first. An empty season returns every season.
func (s *PostgresMatchStore) ListResults(ctx context.Context, season string) ([]models.MatchResult, error) {
	query := `SELECT ` + resultColumns + ` FROM match_results`
	var args []any
	if season != "" {
		query += ` WHERE season = $1`
		args = append(args, season)
	}
	query += ` ORDER BY kickoff, round, match_id`

	rows, err := s.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []models.MatchResult
	for rows.Next() {
		var r models.MatchResult
		if err := rows.Scan(
			&r.MatchID, &r.Season, &r.Round, &r.Kickoff, &r.HomeTeam, &r.AwayTeam, &r.HomeTeamID, &r.AwayTeamID,
			&r.HomeGoals, &r.AwayGoals, &r.HomeXG, &r.AwayXG,
			&r.HomeShotsOnTarget, &r.AwayShotsOnTarget, &r.HomeBigChances, &r.AwayBigChances,
			&r.HomeCorners, &r.AwayCorners, &r.HomeTouchesOppBox, &r.AwayTouchesOppBox, &r.HomeShots, &r.AwayShots,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SaveResults upserts results by match ID in one round trip
func (s *PostgresMatchStore) SaveResults(ctx context.Context, results []models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(`
			INSERT INTO match_results (`+resultColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
			ON CONFLICT (match_id) DO UPDATE SET
				season = EXCLUDED.season, round = EXCLUDED.round, kickoff = EXCLUDED.kickoff,
				home_goals = EXCLUDED.home_goals, away_goals = EXCLUDED.away_goals,
				home_xg = EXCLUDED.home_xg, away_xg = EXCLUDED.away_xg,
				home_shots_on_target = EXCLUDED.home_shots_on_target, away_shots_on_target = EXCLUDED.away_shots_on_target,
				home_big_chances = EXCLUDED.home_big_chances, away_big_chances = EXCLUDED.away_big_chances,
				home_corners = EXCLUDED.home_corners, away_corners = EXCLUDED.away_corners,
				home_touches_opp_box = EXCLUDED.home_touches_opp_box, away_touches_opp_box = EXCLUDED.away_touches_opp_box,
				home_shots = EXCLUDED.home_shots, away_shots = EXCLUDED.away_shots
		`, resultArgs(r)...)
	}

	br := s.pg.SendBatch(ctx, batch)
	defer br.Close()
	for i := range results {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert result %s: %w", results[i].MatchID, err)
		}
	}
	return nil
}

// ListFixtures returns stored fixtures ordered by round and kickoff
func (s *PostgresMatchStore) ListFixtures(ctx context.Context) ([]models.Fixture, error) {
	rows, err := s.pg.Query(ctx, `SELECT payload FROM fixtures ORDER BY round, kickoff NULLS LAST, match_id`)
	if err != nil {
		return nil, fmt.Errorf("query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []models.Fixture
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		var f models.Fixture
		if err := json.Unmarshal(payload, &f); err != nil {
			return nil, fmt.Errorf("decode fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}

// ReplaceFixtures swaps the stored fixture list for fixtures
func (s *PostgresMatchStore) ReplaceFixtures(ctx context.Context, fixtures []models.Fixture) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM fixtures`)
	for i := range fixtures {
		f := &fixtures[i]
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode fixture: %w", err)
		}
		batch.Queue(`
			INSERT INTO fixtures (match_id, season, round, home_team, away_team, home_team_id, away_team_id, date, time, kickoff, status, payload)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (match_id) DO UPDATE SET payload = EXCLUDED.payload, status = EXCLUDED.status
		`, FixtureKey(f), f.Season, f.Round, f.HomeTeam, f.AwayTeam, f.HomeTeamID, f.AwayTeamID,
			f.Date, f.Time, nullTime(f.Kickoff), string(f.Status), payload)
	}

	// Batches run as one implicit transaction
	br := s.pg.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("replace fixtures: %w", err)
		}
	}
	return nil
}

func resultArgs(r models.MatchResult) []any {
	return []any{
		r.MatchID, r.Season, r.Round, r.Kickoff, r.HomeTeam, r.AwayTeam, r.HomeTeamID, r.AwayTeamID,
		r.HomeGoals, r.AwayGoals, r.HomeXG, r.AwayXG,
		r.HomeShotsOnTarget, r.AwayShotsOnTarget, r.HomeBigChances, r.AwayBigChances,
		r.HomeCorners, r.AwayCorners, r.HomeTouchesOppBox, r.AwayTouchesOppBox, r.HomeShots, r.AwayShots,
	}
}

// FixtureKey returns the fixture's match ID, or a round/teams key when the feed has none.
func FixtureKey(f *models.Fixture) string {
	if f.MatchID != "" {
		return f.MatchID
	}
	return fmt.Sprintf("r%d:%s:%s", f.Round, f.HomeTeam, f.AwayTeam)
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
