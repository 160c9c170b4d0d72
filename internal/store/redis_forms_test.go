package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footyliveliness/api/internal/models"
)

type MockRedisClient struct {
	HGetAllFunc     func(ctx context.Context, key string) *redis.MapStringStringCmd
	TxPipelinedFunc func(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	PingFunc        func(ctx context.Context) *redis.StatusCmd
}

func (m *MockRedisClient) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	if m.HGetAllFunc != nil {
		return m.HGetAllFunc(ctx, key)
	}
	return redis.NewMapStringStringResult(map[string]string{}, nil)
}

func (m *MockRedisClient) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	if m.TxPipelinedFunc != nil {
		return m.TxPipelinedFunc(ctx, fn)
	}
	return nil, fn(&recordingPipe{hashes: map[string]map[string]string{}})
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return redis.NewStatusResult("PONG", nil)
}

// recordingPipe applies the hash commands the form store queues to an in-memory map
type recordingPipe struct {
	redis.Pipeliner
	hashes  map[string]map[string]string
	ttls    map[string]time.Duration
	deleted []string
}

func (p *recordingPipe) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(p.hashes, k)
		p.deleted = append(p.deleted, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (p *recordingPipe) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	h := p.hashes[key]
	if h == nil {
		h = make(map[string]string)
		p.hashes[key] = h
	}
	for _, v := range values {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k, fv := range fields {
			h[k] = fmt.Sprint(fv)
		}
	}
	return redis.NewIntResult(int64(len(h)), nil)
}

func (p *recordingPipe) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if p.ttls == nil {
		p.ttls = make(map[string]time.Duration)
	}
	p.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

// newMemoryRedis returns a client whose transactions and reads share pipe's hashes
func newMemoryRedis() (*MockRedisClient, *recordingPipe) {
	pipe := &recordingPipe{hashes: map[string]map[string]string{}}
	client := &MockRedisClient{
		TxPipelinedFunc: func(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
			return nil, fn(pipe)
		},
		HGetAllFunc: func(ctx context.Context, key string) *redis.MapStringStringCmd {
			h := pipe.hashes[key]
			if h == nil {
				h = map[string]string{}
			}
			return redis.NewMapStringStringResult(h, nil)
		},
	}
	return client, pipe
}

func TestRedisFormStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	client, pipe := newMemoryRedis()
	s := NewRedisFormStore(client, 24*time.Hour)

	forms := []models.TeamForm{
		{Team: "Arsenal", Venue: models.VenueHome, XGAtt90: 2.05, Position: 2, Points: 31, FormString: "WWDWL", MatchesUsed: 5,
			UpdatedAt: time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)},
		{Team: "Arsenal", Venue: models.VenueAway, XGAtt90: 1.4, Position: 2, Points: 31, Defaulted: true},
	}
	require.NoError(t, s.SaveForms(ctx, forms))

	assert.Equal(t, []string{"team_form:Arsenal:home", "team_form:Arsenal:away"}, pipe.deleted)
	assert.Equal(t, 24*time.Hour, pipe.ttls["team_form:Arsenal:home"])

	got, err := s.GetForm(ctx, "Arsenal", models.VenueHome)
	require.NoError(t, err)
	assert.Equal(t, forms[0], *got)

	got, err = s.GetForm(ctx, "Arsenal", models.VenueAway)
	require.NoError(t, err)
	assert.True(t, got.Defaulted)
	assert.InDelta(t, 1.4, got.XGAtt90, 1e-9)
}

func TestRedisFormStore_NoTTL(t *testing.T) {
	client, pipe := newMemoryRedis()
	s := NewRedisFormStore(client, 0)

	require.NoError(t, s.SaveForms(context.Background(), []models.TeamForm{{Team: "Leeds", Venue: models.VenueHome}}))
	assert.Empty(t, pipe.ttls)
	require.NoError(t, s.SaveForms(context.Background(), nil))
}

func TestRedisFormStore_GetForm(t *testing.T) {
	tests := []struct {
		name      string
		result    *redis.MapStringStringCmd
		wantErrIs error
		wantErr   bool
	}{
		{
			name:      "Empty hash",
			result:    redis.NewMapStringStringResult(map[string]string{}, nil),
			wantErrIs: models.ErrNotFound,
		},
		{
			name:      "Nil reply",
			result:    redis.NewMapStringStringResult(nil, redis.Nil),
			wantErrIs: models.ErrNotFound,
		},
		{
			name:    "Connection error",
			result:  redis.NewMapStringStringResult(nil, errors.New("connection refused")),
			wantErr: true,
		},
		{
			name:    "Corrupt field",
			result:  redis.NewMapStringStringResult(map[string]string{"team": "Leeds", "points": "many"}, nil),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockRedisClient{
				HGetAllFunc: func(ctx context.Context, key string) *redis.MapStringStringCmd {
					assert.Equal(t, "team_form:Leeds:away", key)
					return tt.result
				},
			}
			s := NewRedisFormStore(client, time.Hour)

			_, err := s.GetForm(context.Background(), "Leeds", models.VenueAway)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			assert.Error(t, err)
			assert.NotErrorIs(t, err, models.ErrNotFound)
		})
	}
}

func TestRedisFormStore_Errors(t *testing.T) {
	ctx := context.Background()
	client := &MockRedisClient{
		TxPipelinedFunc: func(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
			return nil, errors.New("EXECABORT")
		},
		PingFunc: func(ctx context.Context) *redis.StatusCmd {
			return redis.NewStatusResult("", errors.New("dial tcp: refused"))
		},
	}
	s := NewRedisFormStore(client, time.Hour)

	assert.Error(t, s.SaveForms(ctx, []models.TeamForm{{Team: "Leeds", Venue: models.VenueHome}}))
	assert.Error(t, s.Ping(ctx))
}
