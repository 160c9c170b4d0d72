package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/footyliveliness/api/internal/models"
)

// Dialect names the database/sql driver behind a SQLMatchStore
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// SQLMatchStore keeps results and fixtures behind database/sql. It serves the
// SQLite development store, MySQL deployments and lib/pq Postgres connections.
// Kickoff times are stored as Unix seconds so every dialect scans them the same way.
type SQLMatchStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLMatchStore opens and pings the database
func OpenSQLMatchStore(dialect Dialect, dsn string) (*SQLMatchStore, error) {
	switch dialect {
	case DialectSQLite, DialectMySQL, DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported store dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == DialectSQLite {
		// One connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &SQLMatchStore{db: db, dialect: dialect}, nil
}

func (s *SQLMatchStore) Close() error {
	return s.db.Close()
}

func (s *SQLMatchStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the tables if they do not exist
func (s *SQLMatchStore) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS match_results (
			match_id             VARCHAR(64) PRIMARY KEY,
			season               VARCHAR(16) NOT NULL DEFAULT '',
			round                INT NOT NULL DEFAULT 0,
			kickoff              BIGINT NOT NULL,
			home_team            VARCHAR(128) NOT NULL,
			away_team            VARCHAR(128) NOT NULL,
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
		)`,
		`CREATE TABLE IF NOT EXISTS fixtures (
			match_id VARCHAR(160) PRIMARY KEY,
			round    INT NOT NULL DEFAULT 0,
			kickoff  BIGINT NOT NULL DEFAULT 0,
			status   VARCHAR(16) NOT NULL DEFAULT 'upcoming',
			payload  TEXT NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// ListResults returns finished matches oldest first. An empty season returns every season.
func (s *SQLMatchStore) ListResults(ctx context.Context, season string) ([]models.MatchResult, error) {
	query := `SELECT ` + resultColumns + ` FROM match_results`
	var args []any
	if season != "" {
		query += ` WHERE season = ?`
		args = append(args, season)
	}
	query += ` ORDER BY kickoff, round, match_id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []models.MatchResult
	for rows.Next() {
		var r models.MatchResult
		var kickoff int64
		if err := rows.Scan(
			&r.MatchID, &r.Season, &r.Round, &kickoff, &r.HomeTeam, &r.AwayTeam, &r.HomeTeamID, &r.AwayTeamID,
			&r.HomeGoals, &r.AwayGoals, &r.HomeXG, &r.AwayXG,
			&r.HomeShotsOnTarget, &r.AwayShotsOnTarget, &r.HomeBigChances, &r.AwayBigChances,
			&r.HomeCorners, &r.AwayCorners, &r.HomeTouchesOppBox, &r.AwayTouchesOppBox, &r.HomeShots, &r.AwayShots,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Kickoff = time.Unix(kickoff, 0).UTC()
		results = append(results, r)
	}
	return results, rows.Err()
}

// SaveResults upserts results by match ID inside one transaction
func (s *SQLMatchStore) SaveResults(ctx context.Context, results []models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.upsert("match_results", resultColumns, 22))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		args := resultArgs(r)
		args[3] = r.Kickoff.Unix()
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("upsert result %s: %w", r.MatchID, err)
		}
	}
	return tx.Commit()
}

// ListFixtures returns stored fixtures ordered by round and kickoff
func (s *SQLMatchStore) ListFixtures(ctx context.Context) ([]models.Fixture, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM fixtures ORDER BY round, kickoff, match_id`)
	if err != nil {
		return nil, fmt.Errorf("query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []models.Fixture
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		var f models.Fixture
		if err := json.Unmarshal([]byte(payload), &f); err != nil {
			return nil, fmt.Errorf("decode fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}

// ReplaceFixtures swaps the stored fixture list for fixtures inside one transaction
func (s *SQLMatchStore) ReplaceFixtures(ctx context.Context, fixtures []models.Fixture) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fixtures`); err != nil {
		return fmt.Errorf("clear fixtures: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.upsert("fixtures", "match_id, round, kickoff, status, payload", 5))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range fixtures {
		f := &fixtures[i]
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode fixture: %w", err)
		}
		var kickoff int64
		if !f.Kickoff.IsZero() {
			kickoff = f.Kickoff.Unix()
		}
		if _, err := stmt.ExecContext(ctx, FixtureKey(f), f.Round, kickoff, string(f.Status), string(payload)); err != nil {
			return fmt.Errorf("insert fixture %s: %w", FixtureKey(f), err)
		}
	}
	return tx.Commit()
}

// upsert builds an insert-or-replace statement keyed on the first column
func (s *SQLMatchStore) upsert(table, columns string, n int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", n), ",")
	cols := splitColumns(columns)

	var q string
	switch s.dialect {
	case DialectMySQL:
		sets := make([]string, 0, len(cols)-1)
		for _, c := range cols[1:] {
			sets = append(sets, c+" = VALUES("+c+")")
		}
		q = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
			table, strings.Join(cols, ", "), placeholders, strings.Join(sets, ", "))
	default:
		sets := make([]string, 0, len(cols)-1)
		for _, c := range cols[1:] {
			sets = append(sets, c+" = EXCLUDED."+c)
		}
		q = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
			table, strings.Join(cols, ", "), placeholders, cols[0], strings.Join(sets, ", "))
	}
	return s.rebind(q)
}

// rebind rewrites ? placeholders to $n for Postgres
func (s *SQLMatchStore) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitColumns(columns string) []string {
	parts := strings.Split(columns, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
