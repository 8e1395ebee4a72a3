package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("redis down: %w", common.ErrUnavailable)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	businessErr := errors.New("bad input")
	err := Do(context.Background(), func() error {
		calls++
		return businessErr
	})

	assert.ErrorIs(t, err, businessErr)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("still down: %w", common.ErrUnavailable)
	})

	assert.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, maxAttempts, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, func() error {
		calls++
		return fmt.Errorf("down: %w", common.ErrUnavailable)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
