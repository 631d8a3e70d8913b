// Package cache holds the session-scoped memoization used by taxonomy
// traversal.
//
// Two layers cooperate:
//
//   - [Cache] is a byte-oriented key/value backend ([NullCache] for a purely
//     in-process session, [RedisCache] when several processes share one).
//   - [Memo] sits in front of a backend and guarantees that each distinct key
//     is computed at most once per session, even under concurrent callers.
//
// Keys are built by a [Keyer] so that every operation kind (name match,
// children page) has its own key space. [ScopedKeyer] prefixes keys with a
// session identifier so sessions sharing a Redis instance never see each
// other's entries.
//
// Entries never expire within a session. [Memo.Clear] drops everything a
// session wrote; nothing survives a process restart by design.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
