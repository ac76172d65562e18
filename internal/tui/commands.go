package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pdbscope/internal/launcher"
	"github.com/pders01/pdbscope/internal/results"
)

type openedMsg struct {
	result launcher.Result
}

type errorMsg struct {
	err error
}

type clearStatusMsg struct {
	seq int
}

// runRequest runs a store request off the event loop. The resulting Event
// comes back through Update and is folded in by Apply.
func runRequest[T any](req *results.Request[T]) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		return req.Do()
	}
}

func (a *App) queue(cmd tea.Cmd) {
	if cmd != nil {
		a.queued = append(a.queued, cmd)
	}
}

func (a *App) drain() tea.Cmd {
	if len(a.queued) == 0 {
		return nil
	}
	cmds := a.queued
	a.queued = nil
	return tea.Batch(cmds...)
}

// startHomeSearch is the home debouncer's callback.
func (a *App) startHomeSearch(query string) {
	query = sanitizeSearchInput(query)
	if query == "" || a.closed {
		return
	}
	a.queue(runRequest(a.home.NewSearch(a.ctx, query)))
	a.syncHome()
	a.queue(a.setStatus(MsgSearching, StatusInfo, 0))
	a.queue(a.startSpinner())
}

// startExploreSearch is the explore debouncer's callback.
func (a *App) startExploreSearch(query string) {
	query = sanitizeSearchInput(query)
	if query == "" || a.closed {
		return
	}
	a.queue(runRequest(a.explore.NewSearch(a.ctx, query)))
	a.queue(a.setStatus(MsgSearching, StatusInfo, 0))
	a.queue(a.startSpinner())
}

// loadMoreHome runs as the dropdown's load-more callback, so it must not
// touch the dropdown itself; syncHome picks up the loading state afterwards.
func (a *App) loadMoreHome() tea.Cmd {
	req := a.home.LoadMore(a.ctx)
	if req == nil {
		return nil
	}
	return tea.Batch(runRequest(req), a.setStatus(MsgLoadingMore, StatusInfo, 0), a.startSpinner())
}

func (a *App) loadMoreExplore() tea.Cmd {
	req := a.explore.LoadMore(a.ctx)
	if req == nil {
		return nil
	}
	return tea.Batch(runRequest(req), a.setStatus(MsgLoadingMore, StatusInfo, 0), a.startSpinner())
}

// exploreNearEnd asks for the next page once the cursor is within the
// threshold of the last loaded entry.
func (a *App) exploreNearEnd() tea.Cmd {
	n := len(a.exploreList.Items())
	if n == 0 || a.exploreList.Index() < n-1-loadMoreThreshold {
		return nil
	}
	return a.loadMoreExplore()
}

// selectEntry makes sel the current entry and asks the viewer to show it,
// superseding whatever it was loading.
func (a *App) selectEntry(sel Selection) tea.Cmd {
	a.selection = sel
	a.err = nil
	if cur := a.viewer.Current(); cur != nil && cur.ID != sel.ID {
		a.viewer.Clear()
	}
	render := a.viewer.Render(a.ctx, sel.ID, sel.Label)
	if render == nil {
		return nil
	}
	a.loadingEntry = true
	return tea.Batch(render, a.setStatus(MsgLoadingEntry, StatusInfo, 0), a.startSpinner())
}

func (a *App) openExternal(id string) tea.Cmd {
	if id == "" {
		return a.setStatus(MsgNothingToOpen, StatusWarn, a.statusTTL)
	}
	open := a.launcher
	return func() tea.Msg {
		res, err := open.Open(id)
		if err != nil {
			return errorMsg{err: wrapErr("opening "+id, err)}
		}
		return openedMsg{result: res}
	}
}

// setStatus shows text in the status bar. A positive ttl clears it again
// unless a newer status replaced it first.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusKind = kind
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}
