package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	tr := NoopTraversalHooks{}
	tr.OnResolve(ctx, "Felidae", "FAMILY", true, time.Second)
	tr.OnExpand(ctx, 9703, 14, time.Second)
	tr.OnPage(ctx, 9703, 0, 14)

	co := NoopCollectHooks{}
	co.OnPage(ctx, "Africa", 0, 300, 297, nil)
	co.OnComplete(ctx, 9703, 1000, time.Minute, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "match")
	c.OnCacheMiss(ctx, "children")
	c.OnCacheSet(ctx, "children", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.gbif.org", "/v1/species/match")
	h.OnResponse(ctx, "GET", "api.gbif.org", "/v1/species/match", 200, time.Second)
	h.OnError(ctx, "GET", "api.gbif.org", "/v1/species/match", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Traversal().(NoopTraversalHooks); !ok {
		t.Error("Traversal() should return NoopTraversalHooks by default")
	}
	if _, ok := Collect().(NoopCollectHooks); !ok {
		t.Error("Collect() should return NoopCollectHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customTraversal := &testTraversalHooks{}
	SetTraversalHooks(customTraversal)
	if Traversal() != customTraversal {
		t.Error("SetTraversalHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Traversal().(NoopTraversalHooks); !ok {
		t.Error("Reset() should restore NoopTraversalHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)
	SetCacheHooks(nil)
	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
	Reset()
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testCacheHooks{}
	SetCacheHooks(h)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "match")
	Cache().OnCacheMiss(ctx, "children")
	Cache().OnCacheMiss(ctx, "children")

	if h.hits != 1 || h.misses != 2 {
		t.Errorf("hits=%d misses=%d, want 1 and 2", h.hits, h.misses)
	}
}

type testTraversalHooks struct{ NoopTraversalHooks }

type testCacheHooks struct {
	hits, misses int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *testCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *testCacheHooks) OnCacheSet(context.Context, string, int) {}
