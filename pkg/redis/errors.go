package redis

import "errors"

var (
	// ErrFailedToParseRedisConnString means the REDIS_URL value is malformed.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	// ErrRedisNotReady means the server did not answer a ping within the
	// configured connect timeout and retry budget.
	ErrRedisNotReady = errors.New("redis not ready within connect timeout")
	// ErrHealthcheckFailed wraps ping failures from the readiness probe.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
