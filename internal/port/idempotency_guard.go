package port

import "context"

type IdempotencyGuard interface {
	// SetIdempotency registers a key, returns false if it was already set
	// within the retention window.
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
