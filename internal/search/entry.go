package search

import (
	"context"
	"strings"

	"github.com/pders01/pdbscope/internal/debuglog"
	"github.com/pders01/pdbscope/internal/rcsb"
)

// DetailSource is the transport behind EntryFetcher.
type DetailSource interface {
	IdentifierSearcher
	FetchDetails(ctx context.Context, ids []string) ([]rcsb.EntryDetail, error)
}

// DetailCache is an optional read-through cache for entry details.
type DetailCache interface {
	GetDetails(ids []string) (map[string]rcsb.EntryDetail, error)
	PutDetails(details []rcsb.EntryDetail) error
}

// EntryFetcher backs the explore surface.
type EntryFetcher struct {
	src   DetailSource
	cache DetailCache
	log   *debuglog.FieldLogger
}

func NewEntryFetcher(src DetailSource, cache DetailCache) *EntryFetcher {
	return &EntryFetcher{
		src:   src,
		cache: cache,
		log:   debuglog.With("component", "search", "surface", "explore"),
	}
}

func (f *EntryFetcher) Search(ctx context.Context, query string, offset int) (Page[rcsb.EntryDetail], error) {
	ids, ok, err := identifiers(ctx, f.src, f.log, query, offset)
	if err != nil {
		return Page[rcsb.EntryDetail]{}, err
	}
	if !ok {
		return emptyPage[rcsb.EntryDetail](), nil
	}

	details := map[string]rcsb.EntryDetail{}
	if f.cache != nil {
		if cached, cacheErr := f.cache.GetDetails(ids.IDs); cacheErr == nil {
			details = cached
		} else {
			f.log.Warnf("detail cache read failed: %v", cacheErr)
		}
	}

	if need := missing(ids.IDs, details); len(need) > 0 {
		fetched, fetchErr := f.src.FetchDetails(ctx, need)
		if abortErr := aborted(ctx); abortErr != nil {
			return Page[rcsb.EntryDetail]{}, abortErr
		}
		if fetchErr != nil {
			f.log.Warnf("detail fetch for %d ids failed: %v", len(need), fetchErr)
			return emptyPage[rcsb.EntryDetail](), nil
		}
		for _, d := range fetched {
			details[strings.ToUpper(d.ID)] = d
		}
		if f.cache != nil && len(fetched) > 0 {
			if putErr := f.cache.PutDetails(fetched); putErr != nil {
				f.log.Warnf("detail cache write failed: %v", putErr)
			}
		}
	}

	items := make([]rcsb.EntryDetail, 0, len(ids.IDs))
	for _, id := range ids.IDs {
		d, ok := details[id]
		if !ok {
			d, ok = details[strings.ToUpper(id)]
		}
		if !ok {
			d = rcsb.EntryDetail{Title: rcsb.UnknownTitle}
		}
		d.ID = id
		items = append(items, d)
	}

	return Page[rcsb.EntryDetail]{Items: items, TotalCount: ids.TotalCount}, nil
}
