package taxon

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxonscope/pkg/cache"
	"github.com/matzehuels/taxonscope/pkg/observability"
)

// DefaultPageSize is the children page size used when none is given.
const DefaultPageSize = 100

// Paginator gathers the direct children of a taxon across pages.
//
// Each page is memoized by (id, offset, limit), so fetching the same
// children twice within a session touches the network once.
type Paginator struct {
	src    Source
	memo   *cache.Memo
	logger *log.Logger
}

// NewPaginator creates a Paginator reading from src. A nil memo memoizes
// in-process only; a nil logger discards output.
func NewPaginator(src Source, memo *cache.Memo, logger *log.Logger) *Paginator {
	if memo == nil {
		memo = cache.NewMemo(nil, nil, 0)
	}
	return &Paginator{src: src, memo: memo, logger: orDiscard(logger)}
}

// FetchChildren returns up to maxResults children of id, requesting pages of
// at most pageSize records at offsets 0, n, 2n and so on. maxResults <= 0
// means no cap; pageSize <= 0 selects DefaultPageSize.
//
// Pagination stops at the first short, empty or final page, or once the cap
// is reached. A failed page ends pagination and is logged; whatever was
// gathered before it is returned. The only error is ctx.Err().
func (p *Paginator) FetchChildren(ctx context.Context, id ID, pageSize, maxResults int) ([]Record, error) {
	var acc []Record
	err := p.ScanChildren(ctx, id, pageSize, maxResults, func(r Record) bool {
		acc = append(acc, r)
		return true
	})
	return acc, err
}

// ScanChildren pages through the children of id like [Paginator.FetchChildren],
// handing each record to fn in listing order. Scanning stops when fn returns
// false, the listing ends, or maxScanned records have been seen (<= 0 means
// no bound). Pages are memoized the same way. The only error is ctx.Err().
func (p *Paginator) ScanChildren(ctx context.Context, id ID, pageSize, maxScanned int, fn func(Record) bool) error {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	seen := 0
	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}

		limit := pageSize
		if maxScanned > 0 {
			limit = min(pageSize, maxScanned-seen)
		}

		page, err := p.page(ctx, id, offset, limit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("children page failed", "id", id, "offset", offset, "err", err)
			return nil
		}

		records := page.Records
		if len(records) > limit {
			records = records[:limit]
		}
		for _, r := range records {
			seen++
			if !fn(r) {
				return nil
			}
		}

		if len(records) == 0 || len(records) < limit || page.EndOfRecords {
			return nil
		}
		if maxScanned > 0 && seen >= maxScanned {
			return nil
		}
		offset += len(records)
	}
}

func (p *Paginator) page(ctx context.Context, id ID, offset, limit int) (Page, error) {
	key := p.memo.Keyer().ChildrenKey(int64(id), offset, limit)
	return cache.Compute(ctx, p.memo, cache.KindChildren, key, func(ctx context.Context) (Page, error) {
		page, err := p.src.Children(ctx, id, offset, limit)
		if err == nil {
			observability.Traversal().OnPage(ctx, int64(id), offset, len(page.Records))
		}
		return page, err
	})
}
