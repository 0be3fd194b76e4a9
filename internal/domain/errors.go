package domain

import "errors"

var (
	// ErrSessionNotFound is returned by stores when the session id is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCompletionTransient marks completion-service failures worth retrying
	// (network errors, timeouts). Adapters wrap transport failures with it;
	// the orchestration boundary retries a bounded number of times before
	// degrading to an apology response.
	ErrCompletionTransient = errors.New("completion service unavailable")

	// ErrStoreUnavailable marks remote-store failures of the same transient
	// class as ErrCompletionTransient.
	ErrStoreUnavailable = errors.New("store unavailable")
)
