package taxon

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errUnavailable = errors.New("service unavailable")

type childCall struct {
	id            ID
	offset, limit int
}

// fakeSource is an in-memory checklist that records every call.
type fakeSource struct {
	mu         sync.Mutex
	names      map[string]ID
	matchErr   error
	children   func(id ID, offset, limit int) (Page, error)
	matchCalls int
	childCalls []childCall
}

func (f *fakeSource) Match(ctx context.Context, name string, rank Rank) (ID, error) {
	f.mu.Lock()
	f.matchCalls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.matchErr != nil {
		return 0, f.matchErr
	}
	if id, ok := f.names[name]; ok {
		return id, nil
	}
	return 0, ErrNotFound
}

func (f *fakeSource) Children(ctx context.Context, id ID, offset, limit int) (Page, error) {
	f.mu.Lock()
	f.childCalls = append(f.childCalls, childCall{id, offset, limit})
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if f.children == nil {
		return Page{EndOfRecords: true}, nil
	}
	return f.children(id, offset, limit)
}

func (f *fakeSource) calls() []childCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]childCall(nil), f.childCalls...)
}

// flatChildren serves total children of the given rank below every taxon.
func flatChildren(total int, rank Rank) func(ID, int, int) (Page, error) {
	return func(id ID, offset, limit int) (Page, error) {
		var page Page
		for i := offset; i < total && i < offset+limit; i++ {
			page.Records = append(page.Records, Record{
				ID:            id*10000 + ID(i) + 1,
				CanonicalName: fmt.Sprintf("child-%d-%d", id, i),
				Rank:          rank,
			})
		}
		page.EndOfRecords = offset+limit >= total
		return page, nil
	}
}

// endlessChildren serves an unbounded supply of children with unique keys,
// never reporting the end of records. Each child carries the rank after its
// parent's, starting from the given root ranks.
func endlessChildren(roots map[ID]Rank) func(ID, int, int) (Page, error) {
	var mu sync.Mutex
	ranks := make(map[ID]Rank, len(roots))
	for id, r := range roots {
		ranks[id] = r
	}
	var next ID = 1000
	return func(id ID, offset, limit int) (Page, error) {
		mu.Lock()
		defer mu.Unlock()
		child, ok := Next(ranks[id])
		if !ok {
			child = Unranked
		}
		page := Page{Records: make([]Record, limit)}
		for i := range page.Records {
			next++
			ranks[next] = child
			page.Records[i] = Record{ID: next, CanonicalName: fmt.Sprintf("t%d", next), Rank: child}
		}
		return page, nil
	}
}
