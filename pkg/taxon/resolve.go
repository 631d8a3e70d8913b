package taxon

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxonscope/pkg/cache"
	"github.com/matzehuels/taxonscope/pkg/observability"
)

// Resolver maps a (name, rank) pair to a usage key.
//
// Answers are memoized per (name, rank) for the lifetime of the memo,
// including "no match" answers. Transport failures are logged and reported
// as [ErrNotFound] but not memoized, so a later call may succeed.
type Resolver struct {
	src    Source
	memo   *cache.Memo
	logger *log.Logger
}

// NewResolver creates a Resolver reading from src. A nil memo memoizes
// in-process only; a nil logger discards output.
func NewResolver(src Source, memo *cache.Memo, logger *log.Logger) *Resolver {
	if memo == nil {
		memo = cache.NewMemo(nil, nil, 0)
	}
	return &Resolver{src: src, memo: memo, logger: orDiscard(logger)}
}

// Resolve returns the usage key GBIF considers the best match for name at
// rank. Pass Unranked to match without a rank constraint.
//
// The only errors are [ErrNotFound] and ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, name string, rank Rank) (ID, error) {
	start := time.Now()
	key := r.memo.Keyer().MatchKey(name, rankParam(rank))

	id, err := cache.Compute(ctx, r.memo, cache.KindMatch, key, func(ctx context.Context) (ID, error) {
		id, err := r.src.Match(ctx, name, rank)
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return id, err
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		r.logger.Warn("name match failed", "name", name, "rank", rank, "err", err)
		id = 0
	}

	observability.Traversal().OnResolve(ctx, name, rankParam(rank), id != 0, time.Since(start))
	if id == 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

func rankParam(r Rank) string {
	if !r.Valid() {
		return ""
	}
	return r.String()
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return l
}
