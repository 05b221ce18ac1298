package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable indicates the underlying event/progress store could
	// not be reached or a query failed. No partial writes are committed when
	// this is returned; callers may retry the whole aggregation.
	ErrDataUnavailable = errors.New("report data unavailable")

	// ErrInvalidRange indicates a custom period with start after end, or a
	// week start that cannot be normalized. Retrying is not meaningful.
	ErrInvalidRange = errors.New("invalid report range")
)

// dataUnavailable wraps a store error so callers can match ErrDataUnavailable
// while keeping the cause in the message.
func dataUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrDataUnavailable, err)
}
