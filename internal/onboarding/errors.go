package onboarding

import "errors"

var (
	// ErrSessionNotFound marks an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrGeneration marks a failed or malformed model response on a
	// mid-conversation turn. Retryable.
	ErrGeneration = errors.New("generation failed")

	// ErrStorage marks a failed document store write.
	ErrStorage = errors.New("storage failed")
)
