package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/taxonscope/pkg/observability"
)

// Memo memoizes computed values for one session.
//
// Each key is computed at most once: the first caller runs the producer,
// concurrent callers for the same key wait for and share that result, and
// later callers read the stored value. Values are kept in-process and written
// through to the backend as JSON so other processes sharing the backend (and
// the same key scope) can reuse them.
//
// Failed computations are not stored; the next caller retries the producer.
// A Memo is safe for concurrent use.
type Memo struct {
	backend Cache
	keyer   Keyer
	ttl     time.Duration
	group   singleflight.Group

	mu      sync.RWMutex
	local   map[string]any
	written map[string]struct{}
}

// NewMemo creates a Memo over backend. A nil backend means in-process only;
// a nil keyer uses [DefaultKeyer]. ttl is passed to the backend on writes and
// should outlive any realistic session (zero stores without expiry).
func NewMemo(backend Cache, keyer Keyer, ttl time.Duration) *Memo {
	if backend == nil {
		backend = NewNullCache()
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &Memo{
		backend: backend,
		keyer:   keyer,
		ttl:     ttl,
		local:   make(map[string]any),
		written: make(map[string]struct{}),
	}
}

// Keyer returns the keyer callers use to build keys for this memo.
func (m *Memo) Keyer() Keyer { return m.keyer }

// Len returns the number of values held in-process.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.local)
}

// Clear drops every in-process value and deletes every key this memo wrote
// to the backend. Backend delete failures are reported after all keys have
// been attempted.
func (m *Memo) Clear(ctx context.Context) error {
	m.mu.Lock()
	written := m.written
	m.local = make(map[string]any)
	m.written = make(map[string]struct{})
	m.mu.Unlock()

	var firstErr error
	for key := range written {
		if err := m.backend.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return firstErr
}

// Reset drops every in-process value and leaves the backend untouched, so
// entries stay readable by other memos sharing the backend and scope.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.local = make(map[string]any)
	m.written = make(map[string]struct{})
	m.mu.Unlock()
}

func (m *Memo) lookup(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.local[key]
	return v, ok
}

func (m *Memo) store(key string, v any) {
	m.mu.Lock()
	m.local[key] = v
	m.mu.Unlock()
}

func (m *Memo) markWritten(key string) {
	m.mu.Lock()
	m.written[key] = struct{}{}
	m.mu.Unlock()
}

// Compute returns the value memoized under key, running produce on a miss.
// kind labels the key for cache hooks (see [KindMatch], [KindChildren]).
//
// The shared producer runs detached from any single caller's cancellation,
// so one caller giving up never fails the others waiting on the same key.
// Each caller stops waiting when its own ctx is done and gets ctx.Err().
func Compute[T any](ctx context.Context, m *Memo, kind, key string, produce func(context.Context) (T, error)) (T, error) {
	var zero T
	hooks := observability.Cache()
	if v, ok := m.lookup(key); ok {
		if t, ok := v.(T); ok {
			hooks.OnCacheHit(ctx, kind)
			return t, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		return compute(shared, m, kind, key, produce)
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func compute[T any](ctx context.Context, m *Memo, kind, key string, produce func(context.Context) (T, error)) (T, error) {
	hooks := observability.Cache()
	if v, ok := m.lookup(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	var out T
	if data, hit, err := m.backend.Get(ctx, key); err == nil && hit {
		if err := json.Unmarshal(data, &out); err == nil {
			m.store(key, out)
			hooks.OnCacheHit(ctx, kind)
			return out, nil
		}
	}

	hooks.OnCacheMiss(ctx, kind)
	out, err := produce(ctx)
	if err != nil {
		return out, err
	}
	m.store(key, out)

	if data, err := json.Marshal(out); err == nil {
		if err := m.backend.Set(ctx, key, data, m.ttl); err == nil {
			m.markWritten(key)
			hooks.OnCacheSet(ctx, kind, len(data))
		}
	}
	return out, nil
}
