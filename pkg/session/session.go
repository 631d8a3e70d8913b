// Package session scopes memoized taxonomy lookups to one browsing session.
//
// A session owns the [cache.Memo] shared by every resolver, paginator and
// traverser created for it. Entries never expire while the session is open.
//
// A private session ([New]) writes under its own "session:<uuid>:" prefix and
// [Session.Close] deletes everything it wrote. A shared session ([Open] with a
// scope) writes under "session:<scope>:", so server replicas and repeated CLI
// runs pointed at the same Redis read each other's lookups; closing it only
// drops the in-process values and the backend TTL ages the keys out.
//
// # Usage
//
//	backend, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: "localhost:6379"})
//	if err != nil {
//	    return err
//	}
//	sess := session.New(backend, session.DefaultTTL)
//	defer sess.Close(ctx)
//
//	resolver := taxon.NewResolver(source, sess.Memo(), logger)
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/taxonscope/pkg/cache"
)

// KeyPrefix is the prefix of every key a session writes to a shared backend.
const KeyPrefix = "session:"

// DefaultTTL bounds how long a session's entries may linger in a shared
// backend if the process dies before Close runs. It is far longer than any
// interactive session.
const DefaultTTL = 24 * time.Hour

// Session is one browsing session and the memoized results it owns.
type Session struct {
	ID        string
	CreatedAt time.Time
	// Shared is set when ID is a caller-chosen scope other sessions may use.
	Shared bool

	memo *cache.Memo
}

// New creates a private session over backend with a fresh random ID.
// A nil backend keeps all entries in-process.
func New(backend cache.Cache, ttl time.Duration) *Session {
	return newSession(backend, ttl, uuid.NewString(), false)
}

// Open creates a session whose keys live under scope. An empty scope opens a
// private session like [New].
func Open(backend cache.Cache, ttl time.Duration, scope string) *Session {
	if scope == "" {
		return New(backend, ttl)
	}
	return newSession(backend, ttl, scope, true)
}

func newSession(backend cache.Cache, ttl time.Duration, id string, shared bool) *Session {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), KeyPrefix+id+":")
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Shared:    shared,
		memo:      cache.NewMemo(backend, keyer, ttl),
	}
}

// Memo returns the session's memo.
func (s *Session) Memo() *cache.Memo { return s.memo }

// Age returns how long the session has been open.
func (s *Session) Age() time.Duration { return time.Since(s.CreatedAt) }

// Close clears the session's entries. A private session deletes what it
// wrote to the backend; a shared one only forgets its in-process values.
func (s *Session) Close(ctx context.Context) error {
	if s.Shared {
		s.memo.Reset()
		return nil
	}
	return s.memo.Clear(ctx)
}
