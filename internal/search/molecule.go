package search

import (
	"context"
	"strings"

	"github.com/pders01/pdbscope/internal/debuglog"
	"github.com/pders01/pdbscope/internal/rcsb"
)

// Molecule is a home-surface result: an entry ID and its title.
type Molecule struct {
	ID    string
	Title string
}

// Label is how the molecule is shown in the dropdown.
func (m Molecule) Label() string {
	return m.ID + " - " + m.Title
}

// TitleSource is the transport behind MoleculeFetcher.
type TitleSource interface {
	IdentifierSearcher
	FetchTitles(ctx context.Context, ids []string) ([]rcsb.Title, error)
}

// TitleCache is an optional read-through cache for titles.
type TitleCache interface {
	GetTitles(ids []string) (map[string]string, error)
	PutTitles(titles []rcsb.Title) error
}

// MoleculeFetcher backs the home search surface.
type MoleculeFetcher struct {
	src   TitleSource
	cache TitleCache
	log   *debuglog.FieldLogger
}

func NewMoleculeFetcher(src TitleSource, cache TitleCache) *MoleculeFetcher {
	return &MoleculeFetcher{
		src:   src,
		cache: cache,
		log:   debuglog.With("component", "search", "surface", "home"),
	}
}

func (f *MoleculeFetcher) Search(ctx context.Context, query string, offset int) (Page[Molecule], error) {
	ids, ok, err := identifiers(ctx, f.src, f.log, query, offset)
	if err != nil {
		return Page[Molecule]{}, err
	}
	if !ok {
		return emptyPage[Molecule](), nil
	}

	titles := map[string]string{}
	if f.cache != nil {
		if cached, cacheErr := f.cache.GetTitles(ids.IDs); cacheErr == nil {
			titles = cached
		} else {
			f.log.Warnf("title cache read failed: %v", cacheErr)
		}
	}

	if need := missing(ids.IDs, titles); len(need) > 0 {
		fetched, fetchErr := f.src.FetchTitles(ctx, need)
		if abortErr := aborted(ctx); abortErr != nil {
			return Page[Molecule]{}, abortErr
		}
		if fetchErr != nil {
			f.log.Warnf("title fetch for %d ids failed: %v", len(need), fetchErr)
			return emptyPage[Molecule](), nil
		}
		for _, t := range fetched {
			titles[strings.ToUpper(t.ID)] = t.Title
		}
		if f.cache != nil && len(fetched) > 0 {
			if putErr := f.cache.PutTitles(fetched); putErr != nil {
				f.log.Warnf("title cache write failed: %v", putErr)
			}
		}
	}

	items := make([]Molecule, 0, len(ids.IDs))
	for _, id := range ids.IDs {
		title, ok := titles[id]
		if !ok {
			title, ok = titles[strings.ToUpper(id)]
		}
		if !ok {
			title = rcsb.UnknownTitle
		}
		items = append(items, Molecule{ID: id, Title: title})
	}

	f.log.Debugf("%q offset %d: %d of %d", query, offset, len(items), ids.TotalCount)
	return Page[Molecule]{Items: items, TotalCount: ids.TotalCount}, nil
}
