package redis

import "errors"

var (
	ErrEmptyConnectionURL   = errors.New("empty redis connection URL, set REDIS_URL")
	ErrInvalidConnectionURL = errors.New("failed to parse redis connection URL")
	ErrNotReady             = errors.New("redis did not become ready in time")
	ErrHealthcheckFailed    = errors.New("redis healthcheck failed")
)
