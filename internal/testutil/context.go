package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds unit tests that talk to fakes or local servers.
const DefaultTimeout = 10 * time.Second

// Context returns a context derived from the test context, bounded by
// timeout and by the test deadline when one is set.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Only *testing.T carries a deadline.
	if withDeadline, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if deadline, set := withDeadline.Deadline(); set {
			if remaining := time.Until(deadline) - time.Second; remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
	}
	ctx, cancel := context.WithTimeout(t.Context(), timeout)
	t.Cleanup(cancel)
	return ctx
}
