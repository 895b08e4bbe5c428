package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// connectTimeout bounds opening and migrating the database at startup.
	connectTimeout = 30 * time.Second
)
