package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footyliveliness/api/internal/models"
)

type MockPgPool struct {
	QueryFunc     func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	ExecFunc      func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatchFunc func(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockPgPool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if m.SendBatchFunc != nil {
		return m.SendBatchFunc(ctx, b)
	}
	return &mockBatchResults{}
}

func (m *MockPgPool) Ping(ctx context.Context) error { return nil }

// mockRows scans fixed values into the caller's destinations
type mockRows struct {
	pgx.Rows
	rows    [][]any
	pos     int
	err     error
	closed  bool
	scanErr error
}

func (r *mockRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *mockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *mockRows) Err() error { return r.err }
func (r *mockRows) Close()     { r.closed = true }

// mockBatchResults fails the statement at failAt, counting from 0
type mockBatchResults struct {
	pgx.BatchResults
	execs  int
	failAt int
	err    error
	closed bool
}

func (b *mockBatchResults) Exec() (pgconn.CommandTag, error) {
	i := b.execs
	b.execs++
	if b.err != nil && i == b.failAt {
		return pgconn.CommandTag{}, b.err
	}
	return pgconn.CommandTag{}, nil
}

func (b *mockBatchResults) Close() error {
	b.closed = true
	return nil
}

func pgResults() []models.MatchResult {
	kickoff := time.Date(2024, 12, 14, 15, 0, 0, 0, time.UTC)
	return []models.MatchResult{
		{MatchID: "4506263", Season: "2024/25", Round: 16, Kickoff: kickoff, HomeTeam: "Liverpool", AwayTeam: "Fulham",
			HomeTeamID: 8650, AwayTeamID: 9879, HomeGoals: 2, AwayGoals: 2, HomeXG: 2.61, AwayXG: 0.84, HomeShotsOnTarget: 7},
		{MatchID: "4506270", Season: "2024/25", Round: 16, Kickoff: kickoff.Add(2 * time.Hour), HomeTeam: "Arsenal", AwayTeam: "Everton",
			HomeGoals: 0, AwayGoals: 0, HomeXG: 1.1, AwayXG: 0.3},
	}
}

func TestPostgresMatchStore_ListResults(t *testing.T) {
	want := pgResults()

	tests := []struct {
		name     string
		season   string
		wantArgs []any
		wantSQL  string
	}{
		{name: "All seasons", season: "", wantArgs: nil},
		{name: "One season", season: "2024/25", wantArgs: []any{"2024/25"}, wantSQL: "WHERE season = $1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := &mockRows{rows: [][]any{resultArgs(want[0]), resultArgs(want[1])}}
			pg := &MockPgPool{
				QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
					assert.Contains(t, sql, "FROM match_results")
					assert.Contains(t, sql, "ORDER BY kickoff")
					if tt.wantSQL != "" {
						assert.Contains(t, sql, tt.wantSQL)
					} else {
						assert.NotContains(t, sql, "WHERE")
					}
					assert.Equal(t, tt.wantArgs, args)
					return rows, nil
				},
			}

			got, err := NewPostgresMatchStore(pg).ListResults(context.Background(), tt.season)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.True(t, rows.closed)
		})
	}
}

func TestPostgresMatchStore_ListResultsErrors(t *testing.T) {
	ctx := context.Background()

	pg := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, errors.New("connection reset")
		},
	}
	_, err := NewPostgresMatchStore(pg).ListResults(ctx, "")
	assert.Error(t, err)

	pg.QueryFunc = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		return &mockRows{rows: [][]any{resultArgs(pgResults()[0])}, scanErr: errors.New("bad column")}, nil
	}
	_, err = NewPostgresMatchStore(pg).ListResults(ctx, "")
	assert.Error(t, err)

	pg.QueryFunc = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		return &mockRows{err: errors.New("stream closed")}, nil
	}
	_, err = NewPostgresMatchStore(pg).ListResults(ctx, "")
	assert.Error(t, err)
}

func TestPostgresMatchStore_SaveResults(t *testing.T) {
	ctx := context.Background()
	results := pgResults()

	var sent *pgx.Batch
	br := &mockBatchResults{}
	pg := &MockPgPool{
		SendBatchFunc: func(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
			sent = b
			return br
		},
	}
	s := NewPostgresMatchStore(pg)

	require.NoError(t, s.SaveResults(ctx, nil))
	assert.Nil(t, sent, "empty saves must not reach the database")

	require.NoError(t, s.SaveResults(ctx, results))
	require.NotNil(t, sent)
	require.Equal(t, 2, sent.Len())
	assert.Contains(t, sent.QueuedQueries[0].SQL, "ON CONFLICT (match_id) DO UPDATE")
	assert.Equal(t, resultArgs(results[1]), sent.QueuedQueries[1].Arguments)
	assert.Equal(t, 2, br.execs)
	assert.True(t, br.closed)

	pg.SendBatchFunc = func(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
		return &mockBatchResults{failAt: 1, err: errors.New("deadlock detected")}
	}
	err := s.SaveResults(ctx, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4506270")
}

func TestPostgresMatchStore_Fixtures(t *testing.T) {
	ctx := context.Background()
	fixtures := []models.Fixture{
		{MatchID: "4813562", Round: 17, HomeTeam: "Liverpool", AwayTeam: "Tottenham",
			Kickoff: time.Date(2024, 12, 22, 16, 30, 0, 0, time.UTC), Status: models.StatusUpcoming},
		{Round: 17, HomeTeam: "Leeds", AwayTeam: "Wolves", Status: models.StatusUpcoming},
	}

	var sent *pgx.Batch
	br := &mockBatchResults{}
	pg := &MockPgPool{
		SendBatchFunc: func(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
			sent = b
			return br
		},
	}
	s := NewPostgresMatchStore(pg)

	require.NoError(t, s.ReplaceFixtures(ctx, fixtures))
	require.Equal(t, 3, sent.Len())
	assert.Equal(t, "DELETE FROM fixtures", sent.QueuedQueries[0].SQL)
	assert.Equal(t, "4813562", sent.QueuedQueries[1].Arguments[0])
	assert.Equal(t, "r17:Leeds:Wolves", sent.QueuedQueries[2].Arguments[0])
	assert.Nil(t, sent.QueuedQueries[2].Arguments[9], "a fixture without kickoff stores NULL")
	assert.Equal(t, 3, br.execs)

	payloads := make([][]any, 0, len(fixtures))
	for _, q := range sent.QueuedQueries[1:] {
		payloads = append(payloads, []any{q.Arguments[11]})
	}
	pg.QueryFunc = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		assert.Contains(t, sql, "SELECT payload FROM fixtures")
		return &mockRows{rows: payloads}, nil
	}
	got, err := s.ListFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Tottenham", got[0].AwayTeam)
	assert.True(t, got[0].Kickoff.Equal(fixtures[0].Kickoff))
	assert.Equal(t, "Leeds", got[1].HomeTeam)

	pg.QueryFunc = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		return &mockRows{rows: [][]any{{[]byte("{broken")}}}, nil
	}
	_, err = s.ListFixtures(ctx)
	assert.Error(t, err)

	pg.SendBatchFunc = func(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
		return &mockBatchResults{failAt: 0, err: errors.New("permission denied")}
	}
	assert.Error(t, s.ReplaceFixtures(ctx, fixtures))
}

func TestPostgresMatchStore_Migrate(t *testing.T) {
	var executed string
	pg := &MockPgPool{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			executed = sql
			return pgconn.CommandTag{}, nil
		},
	}
	s := NewPostgresMatchStore(pg)
	require.NoError(t, s.Migrate(context.Background()))
	assert.Equal(t, PostgresSchema, executed)

	pg.ExecFunc = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	assert.Error(t, s.Migrate(context.Background()))
}
