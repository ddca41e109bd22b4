// Package ctxutil holds small context helpers shared across packages.
package ctxutil

import "context"

// Canceled reports whether ctx is done, returning its error (Canceled
// or DeadlineExceeded) and nil while it is still live. ctx.Err()
// already behaves exactly this way; the wrapper exists so call sites
// read as a cancellation check between fragments and levels rather
// than a bare Err() probe.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
