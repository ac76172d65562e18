// Package viewer renders the currently selected structure. Only one render
// is current at a time; a new selection supersedes the one in flight.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/pders01/pdbscope/internal/debuglog"
	"github.com/pders01/pdbscope/internal/rcsb"
)

// ErrDisposed is returned by Load after Dispose.
var ErrDisposed = errors.New("viewer disposed")

// Source provides coordinates and metadata for an entry.
type Source interface {
	DownloadStructure(ctx context.Context, id string) ([]byte, error)
	FetchDetails(ctx context.Context, ids []string) ([]rcsb.EntryDetail, error)
}

// Structure is a loaded entry ready for display.
type Structure struct {
	ID     string
	Label  string
	Header Header
	// Detail is absent when the metadata lookup failed; the coordinate file
	// alone is enough to display the entry.
	Detail rcsb.Nullable[rcsb.EntryDetail]
	Size   int
}

// LoadedMsg reports a finished render.
type LoadedMsg struct {
	Gen       uint64
	Structure *Structure
}

// FailedMsg reports a render that could not complete.
type FailedMsg struct {
	Gen uint64
	ID  string
	Err error
}

type Viewer struct {
	mu       sync.Mutex
	src      Source
	gen      uint64
	cancel   context.CancelFunc
	current  *Structure
	disposed bool
	log      *debuglog.FieldLogger
}

func New(src Source) *Viewer {
	return &Viewer{
		src: src,
		log: debuglog.With("component", "viewer"),
	}
}

// begin supersedes any render in flight.
func (v *Viewer) begin(parent context.Context) (context.Context, uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.disposed {
		return nil, 0, ErrDisposed
	}
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	v.gen++
	v.cancel = cancel
	return ctx, v.gen, nil
}

// Render starts loading id and returns the command delivering LoadedMsg or
// FailedMsg. Pass those back through Accept.
func (v *Viewer) Render(parent context.Context, id, label string) tea.Cmd {
	ctx, gen, err := v.begin(parent)
	if err != nil {
		return nil
	}
	return func() tea.Msg {
		s, err := v.load(ctx, id, label)
		if err != nil {
			return FailedMsg{Gen: gen, ID: id, Err: err}
		}
		return LoadedMsg{Gen: gen, Structure: s}
	}
}

// Load fetches and parses id synchronously and makes it current unless a
// newer load started meanwhile.
func (v *Viewer) Load(parent context.Context, id, label string) (*Structure, error) {
	ctx, gen, err := v.begin(parent)
	if err != nil {
		return nil, err
	}
	s, err := v.load(ctx, id, label)
	if err != nil {
		return nil, err
	}
	v.Accept(LoadedMsg{Gen: gen, Structure: s})
	return s, nil
}

func (v *Viewer) load(ctx context.Context, id, label string) (*Structure, error) {
	id = strings.ToUpper(strings.TrimSpace(id))

	var data []byte
	var details []rcsb.EntryDetail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = v.src.DownloadStructure(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details, err = v.src.FetchDetails(gctx, []string{id})
		if err != nil && gctx.Err() == nil {
			v.log.Warnf("details for %s unavailable: %v", id, err)
			details = nil
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}

	s := &Structure{
		ID:     id,
		Label:  label,
		Header: ParsePDB(data),
		Size:   len(data),
	}
	for _, d := range details {
		if strings.EqualFold(d.ID, id) {
			s.Detail = rcsb.Some(d)
			break
		}
	}
	if s.Label == "" {
		s.Label = id
		if d, ok := s.Detail.Get(); ok {
			s.Label = id + " - " + d.Title
		}
	}
	return s, nil
}

// Accept reports whether msg belongs to the latest render and, for a
// LoadedMsg, makes its structure current.
func (v *Viewer) Accept(msg tea.Msg) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch m := msg.(type) {
	case LoadedMsg:
		if m.Gen != v.gen || v.disposed {
			return false
		}
		v.current = m.Structure
		v.release()
		return true
	case FailedMsg:
		if m.Gen != v.gen || v.disposed {
			return false
		}
		v.release()
		return true
	}
	return false
}

func (v *Viewer) release() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Current is the displayed structure, nil before the first load.
func (v *Viewer) Current() *Structure {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Clear drops the current structure and abandons any render in flight.
func (v *Viewer) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.release()
	v.gen++
	v.current = nil
}

// Dispose releases the viewer. It is safe to call more than once.
func (v *Viewer) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return
	}
	v.disposed = true
	v.release()
	v.current = nil
	v.log.Debugf("disposed")
}
