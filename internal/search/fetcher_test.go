package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/pdbscope/internal/rcsb"
)

type fakeSource struct {
	mu        sync.Mutex
	pages     map[string]rcsb.IdentifierPage
	searchErr error
	detailErr error
	titles    map[string]string
	details   map[string]rcsb.EntryDetail

	// block, when set, holds stage two until the context is done.
	block bool

	searchCalls int
	stage2Calls [][]string
}

func (f *fakeSource) SearchIdentifiers(ctx context.Context, query string, offset int) (rcsb.IdentifierPage, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.searchErr != nil {
		return rcsb.IdentifierPage{}, f.searchErr
	}
	return f.pages[query], nil
}

func (f *fakeSource) stage2(ctx context.Context, ids []string) error {
	f.mu.Lock()
	f.stage2Calls = append(f.stage2Calls, ids)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.detailErr
}

func (f *fakeSource) FetchTitles(ctx context.Context, ids []string) ([]rcsb.Title, error) {
	if err := f.stage2(ctx, ids); err != nil {
		return nil, err
	}
	out := []rcsb.Title{}
	// Reverse order: callers must align by ID.
	for i := len(ids) - 1; i >= 0; i-- {
		if title, ok := f.titles[ids[i]]; ok {
			out = append(out, rcsb.Title{ID: ids[i], Title: title})
		}
	}
	return out, nil
}

func (f *fakeSource) FetchDetails(ctx context.Context, ids []string) ([]rcsb.EntryDetail, error) {
	if err := f.stage2(ctx, ids); err != nil {
		return nil, err
	}
	out := []rcsb.EntryDetail{}
	for i := len(ids) - 1; i >= 0; i-- {
		if d, ok := f.details[ids[i]]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func hemoglobinSource() *fakeSource {
	return &fakeSource{
		pages: map[string]rcsb.IdentifierPage{
			"hemoglobin": {IDs: []string{"4HHB", "2HHB", "1A3N"}, TotalCount: 3},
		},
		titles: map[string]string{
			"4HHB": "HEMOGLOBIN (DEOXY)",
			"2HHB": "HEMOGLOBIN (DEOXY) (HUMAN)",
		},
		details: map[string]rcsb.EntryDetail{
			"4HHB": {ID: "4HHB", Title: "HEMOGLOBIN (DEOXY)", Resolution: rcsb.Some(1.74)},
			"1A3N": {ID: "1A3N", Title: "DEOXY HUMAN HEMOGLOBIN", ExperimentalMethod: rcsb.Some("X-ray")},
		},
	}
}

func TestMoleculeFetcher_Search(t *testing.T) {
	src := hemoglobinSource()
	f := NewMoleculeFetcher(src, nil)

	page, err := f.Search(context.Background(), "hemoglobin", 0)
	require.NoError(t, err)

	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, []Molecule{
		{ID: "4HHB", Title: "HEMOGLOBIN (DEOXY)"},
		{ID: "2HHB", Title: "HEMOGLOBIN (DEOXY) (HUMAN)"},
		{ID: "1A3N", Title: rcsb.UnknownTitle},
	}, page.Items)
	assert.Equal(t, "4HHB - HEMOGLOBIN (DEOXY)", page.Items[0].Label())
}

func TestEntryFetcher_Search(t *testing.T) {
	src := hemoglobinSource()
	f := NewEntryFetcher(src, nil)

	page, err := f.Search(context.Background(), "hemoglobin", 0)
	require.NoError(t, err)

	require.Len(t, page.Items, 3)
	assert.Equal(t, []string{"4HHB", "2HHB", "1A3N"}, []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})
	assert.Equal(t, rcsb.Some(1.74), page.Items[0].Resolution)
	assert.Equal(t, rcsb.UnknownTitle, page.Items[1].Title)
	assert.False(t, page.Items[1].Resolution.Valid)
	assert.Equal(t, "X-ray", page.Items[2].ExperimentalMethod.Or(""))
}

func TestFetcher_ZeroIdentifiersSkipsStageTwo(t *testing.T) {
	src := hemoglobinSource()
	f := NewMoleculeFetcher(src, nil)

	page, err := f.Search(context.Background(), "nothing-matches", 0)
	require.NoError(t, err)
	assert.Equal(t, Page[Molecule]{Items: []Molecule{}}, page)
	assert.Empty(t, src.stage2Calls)
}

func TestFetcher_FailuresYieldEmptyPage(t *testing.T) {
	tests := []struct {
		name string
		src  func() *fakeSource
	}{
		{"stage one", func() *fakeSource {
			s := hemoglobinSource()
			s.searchErr = errors.New("connection refused")
			return s
		}},
		{"stage two", func() *fakeSource {
			s := hemoglobinSource()
			s.detailErr = &rcsb.StatusError{StatusCode: 500}
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mol, err := NewMoleculeFetcher(tt.src(), nil).Search(context.Background(), "hemoglobin", 0)
			require.NoError(t, err)
			assert.Empty(t, mol.Items)
			assert.Zero(t, mol.TotalCount)

			ent, err := NewEntryFetcher(tt.src(), nil).Search(context.Background(), "hemoglobin", 0)
			require.NoError(t, err)
			assert.Empty(t, ent.Items)
			assert.Zero(t, ent.TotalCount)
		})
	}
}

func TestFetcher_Abort(t *testing.T) {
	src := hemoglobinSource()
	src.block = true
	f := NewEntryFetcher(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	page, err := f.Search(ctx, "hemoglobin", 0)
	require.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, page.Items, "an aborted search carries no data")
}

func TestFetcher_DeadlineIsFailure(t *testing.T) {
	src := hemoglobinSource()
	src.block = true
	f := NewMoleculeFetcher(src, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	page, err := f.Search(ctx, "hemoglobin", 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalCount)
}

func TestFetcher_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMoleculeFetcher(hemoglobinSource(), nil).Search(ctx, "hemoglobin", 0)
	assert.ErrorIs(t, err, ErrAborted)
}

type memCache struct {
	details map[string]rcsb.EntryDetail
	titles  map[string]string
}

func (m *memCache) GetDetails(ids []string) (map[string]rcsb.EntryDetail, error) {
	out := map[string]rcsb.EntryDetail{}
	for _, id := range ids {
		if d, ok := m.details[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (m *memCache) PutDetails(details []rcsb.EntryDetail) error {
	for _, d := range details {
		m.details[d.ID] = d
	}
	return nil
}

func (m *memCache) GetTitles(ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if t, ok := m.titles[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (m *memCache) PutTitles(titles []rcsb.Title) error {
	for _, t := range titles {
		m.titles[t.ID] = t.Title
	}
	return nil
}

func TestEntryFetcher_Cache(t *testing.T) {
	src := hemoglobinSource()
	cache := &memCache{
		details: map[string]rcsb.EntryDetail{
			"2HHB": {ID: "2HHB", Title: "cached"},
		},
	}
	f := NewEntryFetcher(src, cache)

	page, err := f.Search(context.Background(), "hemoglobin", 0)
	require.NoError(t, err)
	assert.Equal(t, "cached", page.Items[1].Title)
	require.Len(t, src.stage2Calls, 1)
	assert.Equal(t, []string{"4HHB", "1A3N"}, src.stage2Calls[0], "only misses hit the network")

	// Second search is served entirely from the cache.
	_, err = f.Search(context.Background(), "hemoglobin", 0)
	require.NoError(t, err)
	assert.Len(t, src.stage2Calls, 1)
}

func TestMoleculeFetcher_Cache(t *testing.T) {
	src := hemoglobinSource()
	cache := &memCache{titles: map[string]string{}}
	f := NewMoleculeFetcher(src, cache)

	_, err := f.Search(context.Background(), "hemoglobin", 0)
	require.NoError(t, err)
	assert.Equal(t, "HEMOGLOBIN (DEOXY)", cache.titles["4HHB"])
}
