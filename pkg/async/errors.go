package async

import "errors"

var (
	// ErrTimeout is returned by AwaitTimeout when the deadline fires first.
	ErrTimeout = errors.New("async: timed out waiting for task")
)
