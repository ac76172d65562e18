// Package results holds the paginated result list of a search surface and
// decides which fetch outcomes are allowed to change it.
package results

import (
	"context"
	"errors"
	"sync"

	"github.com/pders01/pdbscope/internal/debuglog"
	"github.com/pders01/pdbscope/internal/search"
)

// Event is the completion of a Request, folded into the store by Apply.
type Event[T any] struct {
	Outcome Outcome
	Kind    Kind
	Version uint64
	Query   string
	Offset  int
	Page    search.Page[T]

	store *Store[T]
}

// Request is a fetch that has been started but not yet run. Do may be called
// on any goroutine; its Event must be handed back to Apply.
type Request[T any] struct {
	Kind    Kind
	Version uint64
	Query   string
	Offset  int

	ctx   context.Context
	store *Store[T]
}

// Do runs the fetch and blocks until it completes or is aborted.
func (r *Request[T]) Do() Event[T] {
	ev := Event[T]{
		Kind:    r.Kind,
		Version: r.Version,
		Query:   r.Query,
		Offset:  r.Offset,
		store:   r.store,
	}

	page, err := r.store.fetcher.Search(r.ctx, r.Query, r.Offset)
	switch {
	case errors.Is(err, search.ErrAborted):
		ev.Outcome = FetchAborted
	case err != nil:
		ev.Outcome = FetchFailed
	case page.TotalCount == 0 && len(page.Items) == 0 && r.Kind == KindLoadMore:
		// Fetchers report transport failures as an empty page. Past the
		// first page that can only be a failure.
		ev.Outcome = FetchFailed
	default:
		ev.Outcome = FetchSucceeded
		ev.Page = page
	}
	return ev
}

// Store is the paginated result state machine for one search surface.
// Stores share nothing; the home and explore surfaces each own one.
type Store[T any] struct {
	mu      sync.Mutex
	fetcher search.Fetcher[T]
	state   State[T]

	// version identifies the latest initiated request. Events carrying any
	// other version are stale.
	version  uint64
	inflight bool
	cancel   context.CancelFunc
	// before is the last committed state, restored on abort.
	before State[T]
	// stalled is set when a load-more failed or came back empty. Fill stays
	// quiet until a new search or a load-more that adds items.
	stalled bool

	log *debuglog.FieldLogger
}

// NewStore returns an idle store that fetches through fetcher.
func NewStore[T any](fetcher search.Fetcher[T]) *Store[T] {
	return &Store[T]{
		fetcher: fetcher,
		state:   State[T]{Items: []T{}},
		log:     debuglog.With("component", "results"),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Version is the identity of the latest initiated request.
func (s *Store[T]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// begin supersedes any outstanding request. Callers hold s.mu.
func (s *Store[T]) begin(parent context.Context, kind Kind, query string, offset int) *Request[T] {
	if s.inflight {
		s.cancel()
	} else {
		s.before = s.state.clone()
	}

	ctx, cancel := context.WithCancel(parent)
	s.version++
	s.inflight = true
	s.cancel = cancel

	s.log.Debugf("%s %q offset %d (v%d)", kind, query, offset, s.version)
	return &Request[T]{
		Kind:    kind,
		Version: s.version,
		Query:   query,
		Offset:  offset,
		ctx:     ctx,
		store:   s,
	}
}

// NewSearch starts a replacing search for query. Any outstanding request is
// cancelled and its eventual result ignored. Current items stay visible
// until the new page commits.
func (s *Store[T]) NewSearch(ctx context.Context, query string) *Request[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.begin(ctx, KindNewSearch, query, 0)
	s.stalled = false
	s.state.Query = query
	s.state.Status = Loading
	return r
}

// LoadMore starts an appending fetch at offset len(Items). It returns nil,
// issuing nothing, while a fetch is loading or when there is nothing more.
func (s *Store[T]) LoadMore(ctx context.Context) *Request[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == Loading || !s.state.HasMore {
		return nil
	}
	r := s.begin(ctx, KindLoadMore, s.state.Query, len(s.state.Items))
	s.state.Status = Loading
	return r
}

// Fill loads more while fewer than visibleRows items are present, so a list
// shorter than its container can still reach the rest of the results. After
// a load-more that failed or added nothing, Fill issues nothing; only an
// explicit LoadMore or a new search can move the list on.
func (s *Store[T]) Fill(ctx context.Context, visibleRows int) *Request[T] {
	s.mu.Lock()
	short := len(s.state.Items) < visibleRows && !s.stalled
	s.mu.Unlock()
	if !short {
		return nil
	}
	return s.LoadMore(ctx)
}

// Apply commits ev if it belongs to the latest request of this store and
// reports whether the state changed.
func (s *Store[T]) Apply(ev Event[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.store != s || ev.Version != s.version || !s.inflight {
		s.log.Debugf("discarding stale %s %s for %q (v%d, current v%d)",
			ev.Kind, ev.Outcome, ev.Query, ev.Version, s.version)
		return false
	}

	s.inflight = false
	s.cancel()
	s.cancel = nil

	switch ev.Outcome {
	case FetchAborted:
		s.state = s.before
		return true

	case FetchFailed:
		if ev.Kind == KindNewSearch {
			s.state.Items = []T{}
			s.state.TotalCount = 0
			s.state.Status = Failed
		} else {
			s.state.Status = Succeeded
			s.stalled = true
		}

	case FetchSucceeded:
		if ev.Kind == KindNewSearch {
			s.state.Items = append([]T{}, ev.Page.Items...)
		} else {
			s.stalled = len(ev.Page.Items) == 0
			items := make([]T, 0, len(s.state.Items)+len(ev.Page.Items))
			items = append(items, s.state.Items...)
			s.state.Items = append(items, ev.Page.Items...)
		}
		s.state.TotalCount = ev.Page.TotalCount
		s.state.Status = Succeeded
	}

	s.state.recompute()
	s.before = s.state.clone()
	return true
}

// Cancel aborts the outstanding request, if any, and restores the state as it
// was before that request began. The request's own event becomes stale.
func (s *Store[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inflight {
		return
	}
	s.cancel()
	s.cancel = nil
	s.inflight = false
	s.version++
	s.state = s.before
}

// Loading reports whether a request is outstanding.
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Clear cancels any outstanding request and returns to the initial state.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight {
		s.cancel()
		s.cancel = nil
		s.inflight = false
	}
	s.version++
	s.stalled = false
	s.state = State[T]{Items: []T{}}
	s.before = s.state.clone()
}

// Search runs a new search to completion and returns the resulting state.
func (s *Store[T]) Search(ctx context.Context, query string) State[T] {
	r := s.NewSearch(ctx, query)
	s.Apply(r.Do())
	return s.Snapshot()
}

// More runs one load-more to completion. ok is false when the guard refused
// to issue a fetch.
func (s *Store[T]) More(ctx context.Context) (st State[T], ok bool) {
	r := s.LoadMore(ctx)
	if r == nil {
		return s.Snapshot(), false
	}
	s.Apply(r.Do())
	return s.Snapshot(), true
}
