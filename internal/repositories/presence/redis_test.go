package presence

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSource(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	cutoff := strconv.FormatInt(now.Add(-DefaultWindow).Unix(), 10)

	tests := []struct {
		name      string
		setup     func(mock redismock.ClientMock)
		want      []string
		wantError engerr.Code
	}{
		{
			name: "returns sorted active ids",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectZRemRangeByScore(activeKey, "-inf", "("+cutoff).SetVal(1)
				mock.ExpectZRangeByScore(activeKey, &redis.ZRangeBy{Min: cutoff, Max: "+inf"}).
					SetVal([]string{"char-2", "char-1"})
			},
			want: []string{"char-1", "char-2"},
		},
		{
			name: "prune failure is store unavailable",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectZRemRangeByScore(activeKey, "-inf", "("+cutoff).SetErr(errors.New("i/o timeout"))
			},
			wantError: engerr.CodeStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			src := NewRedisSource(&RedisSourceConfig{Client: client, Clock: clock.NewFake(now)})
			ids, err := src.ListActiveIDs(context.Background())

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, engerr.GetCode(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisSource_Touch(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	client, mock := redismock.NewClientMock()
	mock.ExpectZAdd(activeKey, redis.Z{Score: float64(now.Unix()), Member: "char-1"}).SetVal(1)

	src := NewRedisSource(&RedisSourceConfig{Client: client, Clock: clock.NewFake(now)})
	require.NoError(t, src.Touch(context.Background(), "char-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
