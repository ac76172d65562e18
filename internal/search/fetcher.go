// Package search resolves a free-text query into a page of display-ready
// results: identifiers first, then their metadata.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/pders01/pdbscope/internal/debuglog"
	"github.com/pders01/pdbscope/internal/rcsb"
)

// ErrAborted is returned when the caller cancels a search. It is the only
// error a Fetcher ever returns; transport failures yield an empty page.
var ErrAborted = errors.New("search aborted")

// Page is one window of results plus the total number of hits.
type Page[T any] struct {
	Items      []T
	TotalCount int
}

func emptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// Fetcher runs a two-stage search for one result surface.
type Fetcher[T any] interface {
	Search(ctx context.Context, query string, offset int) (Page[T], error)
}

// IdentifierSearcher is the first stage: query to a page of entry IDs.
type IdentifierSearcher interface {
	SearchIdentifiers(ctx context.Context, query string, offset int) (rcsb.IdentifierPage, error)
}

// aborted maps a cancelled context to ErrAborted. A passed deadline is a
// failure, not an abort.
func aborted(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", ErrAborted, context.Canceled)
	}
	return nil
}

// identifiers runs stage one. ok is false when the page should be reported
// as empty.
func identifiers(ctx context.Context, s IdentifierSearcher, log *debuglog.FieldLogger, query string, offset int) (rcsb.IdentifierPage, bool, error) {
	page, err := s.SearchIdentifiers(ctx, query, offset)
	if abortErr := aborted(ctx); abortErr != nil {
		return rcsb.IdentifierPage{}, false, abortErr
	}
	if err != nil {
		log.Warnf("identifier search %q offset %d failed: %v", query, offset, err)
		return rcsb.IdentifierPage{}, false, nil
	}
	if len(page.IDs) == 0 {
		return rcsb.IdentifierPage{}, false, nil
	}
	return page, true, nil
}

// missing returns the ids absent from have, preserving order.
func missing[V any](ids []string, have map[string]V) []string {
	var out []string
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
