// Package retry provides the single retry helper used by the feed
// aggregation path. Only transient unavailability is retried; business
// errors propagate immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
)

const (
	maxAttempts = 3
	baseDelay   = 200 * time.Millisecond
)

// Do runs fn up to 3 times with exponential backoff, retrying only when
// the returned error wraps common.ErrUnavailable.
func Do(ctx context.Context, fn func() error) error {
	var err error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrUnavailable) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return err
}
