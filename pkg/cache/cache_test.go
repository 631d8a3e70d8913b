package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("Felidae"))
	h2 := Hash([]byte("Felidae"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("Canidae")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.ChildrenKey(212, 100, 50); got != "children:212:100:50" {
		t.Errorf("ChildrenKey unexpected: %s", got)
	}
	if k.ChildrenKey(212, 0, 50) == k.ChildrenKey(212, 50, 50) {
		t.Error("different offsets should produce different keys")
	}

	m1 := k.MatchKey("Felidae", "FAMILY")
	if !strings.HasPrefix(m1, "match:") {
		t.Errorf("MatchKey should carry its kind: %s", m1)
	}
	if m1 != k.MatchKey("  felidae ", "family") {
		t.Error("MatchKey should normalize case and whitespace")
	}
	if m1 == k.MatchKey("Felidae", "GENUS") {
		t.Error("different ranks should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "session:abc:")

	if got := scoped.ChildrenKey(1, 0, 20); got != "session:abc:children:1:0:20" {
		t.Errorf("ScopedKeyer ChildrenKey unexpected: %s", got)
	}
	if got := scoped.MatchKey("Animalia", "KINGDOM"); !strings.HasPrefix(got, "session:abc:match:") {
		t.Errorf("ScopedKeyer MatchKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.ChildrenKey(7, 0, 1); key != "prefix:children:7:0:1" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestCompute_AtMostOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemo(nil, nil, 0)

	var calls int
	produce := func(context.Context) (int64, error) {
		calls++
		return 1, nil
	}

	for range 5 {
		v, err := Compute(ctx, m, KindMatch, "match:animalia", produce)
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if v != 1 {
			t.Errorf("Compute = %d, want 1", v)
		}
	}
	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestCompute_ConcurrentCallersShareResult(t *testing.T) {
	ctx := context.Background()
	m := NewMemo(nil, nil, 0)

	var calls atomic.Int32
	release := make(chan struct{})
	produce := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"Felis", "Puma"}, nil
	}

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Compute(ctx, m, KindChildren, "children:9703:0:20", produce)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("producer called %d times, want 1", n)
	}
	for i, r := range results {
		if len(r) != 2 {
			t.Errorf("result %d = %v, want 2 genera", i, r)
		}
	}
}

func TestCompute_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	m := NewMemo(nil, nil, 0)
	started := make(chan struct{})
	release := make(chan struct{})
	produce := func(ctx context.Context) (int64, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 9703, nil
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := Compute(first, m, KindMatch, "match:felidae", produce)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   int64
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := Compute(context.Background(), m, KindMatch, "match:felidae", produce)
		second <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller error = %v, want context.Canceled", err)
	}
	close(release)

	got := <-second
	if got.err != nil || got.v != 9703 {
		t.Errorf("waiting caller = %d, %v; want 9703, nil", got.v, got.err)
	}
	if v, err := Compute(context.Background(), m, KindMatch, "match:felidae", produce); err != nil || v != 9703 {
		t.Errorf("memoized value = %d, %v; want 9703, nil", v, err)
	}
}

func TestCompute_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemo(nil, nil, 0)
	_, err := Compute(ctx, m, KindMatch, "k", func(context.Context) (int, error) {
		t.Error("producer should not run for a canceled caller")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCompute_ErrorsNotStored(t *testing.T) {
	ctx := context.Background()
	m := NewMemo(nil, nil, 0)
	boom := errors.New("network error")

	calls := 0
	produce := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	if _, err := Compute(ctx, m, KindMatch, "k", produce); !errors.Is(err, boom) {
		t.Fatalf("first Compute error = %v, want %v", err, boom)
	}
	v, err := Compute(ctx, m, KindMatch, "k", produce)
	if err != nil || v != 42 {
		t.Errorf("second Compute = %d, %v; want 42, nil", v, err)
	}
	if calls != 2 {
		t.Errorf("producer called %d times, want 2", calls)
	}
}

func TestCompute_BackendWriteThroughAndClear(t *testing.T) {
	ctx := context.Background()
	backend := newMapCache()
	keyer := NewScopedKeyer(nil, "session:s1:")
	m := NewMemo(backend, keyer, time.Hour)

	key := keyer.ChildrenKey(5, 0, 10)
	if _, err := Compute(ctx, m, KindChildren, key, func(context.Context) ([]int, error) {
		return []int{1, 2, 3}, nil
	}); err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if _, ok := backend.data[key]; !ok {
		t.Fatal("value should be written through to backend")
	}
	if backend.ttls[key] != time.Hour {
		t.Errorf("ttl = %v, want 1h", backend.ttls[key])
	}

	// A second memo sharing the backend and scope reads the stored value.
	other := NewMemo(backend, keyer, time.Hour)
	got, err := Compute(ctx, other, KindChildren, key, func(context.Context) ([]int, error) {
		t.Error("producer should not run when backend has the value")
		return nil, nil
	})
	if err != nil || len(got) != 3 {
		t.Errorf("read-through = %v, %v; want 3 values", got, err)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", m.Len())
	}
	if _, ok := backend.data[key]; ok {
		t.Error("Clear should delete written keys from backend")
	}
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.ttls[key] = ttl
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }
