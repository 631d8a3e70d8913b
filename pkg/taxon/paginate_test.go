package taxon

import (
	"context"
	"errors"
	"testing"
)

func TestFetchChildren_Cap(t *testing.T) {
	src := &fakeSource{children: flatChildren(1000, Genus)}
	p := NewPaginator(src, nil, nil)

	got, err := p.FetchChildren(context.Background(), 1, 100, 250)
	if err != nil {
		t.Fatalf("FetchChildren() error: %v", err)
	}
	if len(got) != 250 {
		t.Fatalf("got %d records, want 250", len(got))
	}

	want := []childCall{{1, 0, 100}, {1, 100, 100}, {1, 200, 50}}
	calls := src.calls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}

func TestFetchChildren_Bounds(t *testing.T) {
	tests := []struct {
		name               string
		total, size, limit int
		want               int
	}{
		{"under cap", 30, 10, 100, 30},
		{"exact multiple", 40, 10, 0, 40},
		{"unbounded", 230, 100, 0, 230},
		{"cap below page", 500, 100, 7, 7},
		{"empty", 0, 10, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{children: flatChildren(tt.total, Genus)}
			got, err := NewPaginator(src, nil, nil).FetchChildren(context.Background(), 1, tt.size, tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}

			calls := src.calls()
			if tt.limit > 0 {
				bound := (tt.limit+tt.size-1)/tt.size + 1
				if len(calls) > bound {
					t.Errorf("%d requests exceed bound %d", len(calls), bound)
				}
			}
			seen := map[int]bool{}
			for i, c := range calls {
				if seen[c.offset] {
					t.Errorf("offset %d requested twice", c.offset)
				}
				seen[c.offset] = true
				if c.offset != i*tt.size {
					t.Errorf("call %d offset = %d, want %d", i, c.offset, i*tt.size)
				}
			}
		})
	}
}

func TestFetchChildren_ShortPageStops(t *testing.T) {
	src := &fakeSource{children: func(id ID, offset, limit int) (Page, error) {
		if offset > 0 {
			t.Errorf("unexpected request at offset %d", offset)
		}
		return Page{Records: []Record{{ID: 2, Rank: Genus}, {ID: 3, Rank: Genus}}}, nil
	}}
	got, _ := NewPaginator(src, nil, nil).FetchChildren(context.Background(), 1, 10, 0)
	if len(got) != 2 {
		t.Errorf("got %d records, want 2", len(got))
	}
}

func TestFetchChildren_FailedPageEndsPagination(t *testing.T) {
	inner := flatChildren(1000, Genus)
	src := &fakeSource{children: func(id ID, offset, limit int) (Page, error) {
		if offset >= 20 {
			return Page{}, errUnavailable
		}
		return inner(id, offset, limit)
	}}
	got, err := NewPaginator(src, nil, nil).FetchChildren(context.Background(), 1, 10, 100)
	if err != nil {
		t.Fatalf("page failure should not be an error, got %v", err)
	}
	if len(got) != 20 {
		t.Errorf("got %d records, want 20", len(got))
	}
}

func TestFetchChildren_PagesMemoized(t *testing.T) {
	src := &fakeSource{children: flatChildren(45, Genus)}
	p := NewPaginator(src, nil, nil)

	first, _ := p.FetchChildren(context.Background(), 1, 10, 0)
	n := len(src.calls())
	second, _ := p.FetchChildren(context.Background(), 1, 10, 0)

	if len(src.calls()) != n {
		t.Errorf("second fetch made %d extra requests", len(src.calls())-n)
	}
	if len(first) != len(second) {
		t.Errorf("memoized result differs: %d vs %d", len(first), len(second))
	}
}

func TestFetchChildren_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{children: flatChildren(10, Genus)}
	if _, err := NewPaginator(src, nil, nil).FetchChildren(ctx, 1, 10, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
