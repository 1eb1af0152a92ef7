package session

import (
	"context"
	"sync"
)

// The process-wide default session, initialized on first use with the
// default configuration. Outcome caching matches Session.Bootstrap:
// whatever the first EnsureInitialized produced, later calls see.
var (
	defaultMu      sync.Mutex
	defaultSession *Session
)

// EnsureInitialized bootstraps the process-wide default session if it
// has not run yet and returns it. On bootstrap failure the error is
// sticky: every later call returns the same failed session and error.
func EnsureInitialized(ctx context.Context) (*Session, error) {
	defaultMu.Lock()
	if defaultSession == nil {
		defaultSession = New(Config{})
	}
	s := defaultSession
	defaultMu.Unlock()

	return s, s.Bootstrap(ctx)
}

// Default returns the process-wide session, or nil if EnsureInitialized
// has never been called.
func Default() *Session {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultSession
}

// resetDefault is a test hook.
func resetDefault(ctx context.Context) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSession != nil {
		_ = defaultSession.Close(ctx)
		defaultSession = nil
	}
}
