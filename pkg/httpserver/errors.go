package httpserver

import "errors"

var (
	// ErrStart wraps failures to bring the server up.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown wraps failures during graceful shutdown.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
)
