// Package timeout defines centralized timeout constants for model calls and the HTTP server.
package timeout

import "time"

const (
	// GenerationTimeout bounds one persona's response, retries included,
	// when the profile does not override it.
	GenerationTimeout = 60 * time.Second

	// SubmissionTimeout bounds a whole fan-out submission.
	// It must stay above GenerationTimeout.
	SubmissionTimeout = 3 * time.Minute

	// ShutdownTimeout is how long in-flight requests get to drain on shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout limits slow clients on the HTTP listener.
	ReadHeaderTimeout = 10 * time.Second
)
