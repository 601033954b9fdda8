package ports

import (
	"context"
	"time"
)

// ImportLocker serializes import attempts per (user, retailer) pair so two
// concurrent requests cannot run duplicate scrapes against one account.
type ImportLocker interface {
	// AcquireLock takes the lock if free. Returns false when another import
	// currently holds it.
	AcquireLock(ctx context.Context, userID, retailer string, ttl time.Duration) (bool, error)

	// ReleaseLock frees the lock. Safe to call when the lock already expired.
	ReleaseLock(ctx context.Context, userID, retailer string) error
}

// DedupCache is a fast lookaside in front of the product store for
// already-imported (user, name, purchase date) keys.
type DedupCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string, ttl time.Duration) error
}
