package outbox

import "time"

// Config holds outbox worker settings loaded from the environment.
type Config struct {
	// PollInterval is how often the worker checks for due events.
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	// LockTimeout is how long a claimed event stays locked before it is
	// handed back for retry. Set it above the slowest expected handler run.
	LockTimeout time.Duration `env:"OUTBOX_LOCK_TIMEOUT" envDefault:"2m"`
	// MaxConcurrent bounds the number of events processed in parallel.
	MaxConcurrent int `env:"OUTBOX_MAX_CONCURRENT" envDefault:"4"`
	// MaxRetries is the per-event retry budget before the DLQ.
	MaxRetries int8 `env:"OUTBOX_MAX_RETRIES" envDefault:"3"`
	// GuardTTL is how long delivery signatures are remembered by the
	// idempotency guard.
	GuardTTL time.Duration `env:"OUTBOX_GUARD_TTL" envDefault:"24h"`
}
