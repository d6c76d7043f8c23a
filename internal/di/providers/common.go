package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// connectTimeout bounds the startup handshake with remote backends.
	connectTimeout = 10 * time.Second
)
