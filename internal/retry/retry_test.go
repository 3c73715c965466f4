package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = retry.Policy{Retries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return engerr.StoreUnavailable(errors.New("timeout"), "get character")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterRetries(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(ctx context.Context) error {
		calls++
		return engerr.StoreUnavailable(errors.New("timeout"), "get character")
	})

	assert.True(t, engerr.IsStoreUnavailable(err))
	assert.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fast, func(ctx context.Context) error {
		calls++
		return engerr.NotFoundf("character not found: x")
	})

	assert.True(t, engerr.IsNotFound(err))
	assert.Equal(t, 1, calls)
}

func TestValue(t *testing.T) {
	calls := 0
	v, err := retry.Value(context.Background(), fast, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, engerr.StoreUnavailable(errors.New("reset"), "list")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
