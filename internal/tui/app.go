package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pdbscope/internal/config"
	"github.com/pders01/pdbscope/internal/debounce"
	"github.com/pders01/pdbscope/internal/debuglog"
	"github.com/pders01/pdbscope/internal/launcher"
	"github.com/pders01/pdbscope/internal/rcsb"
	"github.com/pders01/pdbscope/internal/results"
	"github.com/pders01/pdbscope/internal/search"
	"github.com/pders01/pdbscope/internal/tui/dropdown"
	"github.com/pders01/pdbscope/internal/validation"
	"github.com/pders01/pdbscope/internal/viewer"
)

const (
	defaultStatusTTL = 4 * time.Second
	// Hidden rows left below the explore cursor that still count as the end.
	loadMoreThreshold = 1
	breakdownWidth    = 36
)

// Opener hands an entry to something outside the terminal.
type Opener interface {
	Open(id string) (launcher.Result, error)
}

// Deps are the collaborators the App drives.
type Deps struct {
	Molecules search.Fetcher[search.Molecule]
	Entries   search.Fetcher[rcsb.EntryDetail]
	Viewer    *viewer.Viewer
	Launcher  Opener
}

type App struct {
	config     *config.Config
	ctx        context.Context
	cancel     context.CancelFunc
	keyHandler *KeyHandler
	help       help.Model
	spinner    spinner.Model
	spinning   bool

	home            *results.Store[search.Molecule]
	explore         *results.Store[rcsb.EntryDetail]
	homeDebounce    *debounce.Debouncer[string]
	exploreDebounce *debounce.Debouncer[string]
	viewer          *viewer.Viewer
	renderer        *viewer.Renderer
	launcher        Opener

	dropdown     dropdown.Model[search.Molecule]
	viewport     viewport.Model
	exploreInput textinput.Model
	exploreList  list.Model

	view         View
	selection    Selection
	loadingEntry bool
	// Commands produced by debounce callbacks, drained at the end of Update.
	queued []tea.Cmd

	status     string
	statusKind StatusKind
	statusSeq  int
	statusTTL  time.Duration
	err        error

	width     int
	height    int
	dropdownY int
	closed    bool

	log *debuglog.FieldLogger
}

// NewApp builds the terminal UI. A deep link with an ID replaces the default
// initial selection.
func NewApp(cfg *config.Config, deps Deps, initial validation.DeepLink) *App {
	ctx, cancel := context.WithCancel(context.Background())

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(AccentColor).BorderForeground(AccentColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(MutedColor).BorderForeground(AccentColor)

	entries := list.New([]list.Item{}, delegate, 0, 0)
	entries.Title = "› entries"
	entries.Styles.Title = TitleStyle
	entries.SetShowStatusBar(false)
	entries.SetFilteringEnabled(false)
	entries.SetShowHelp(false)

	ei := textinput.New()
	ei.Placeholder = "Search RCSB entries..."
	ei.CharLimit = maxQueryRunes

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	a := &App{
		config:       cfg,
		ctx:          ctx,
		cancel:       cancel,
		help:         help.New(),
		spinner:      sp,
		home:         results.NewStore(deps.Molecules),
		explore:      results.NewStore(deps.Entries),
		viewer:       deps.Viewer,
		renderer:     viewer.NewRenderer(cfg.UI.Theme),
		launcher:     deps.Launcher,
		viewport:     viewport.New(0, 0),
		exploreInput: ei,
		exploreList:  entries,
		view:         ViewHome,
		selection:    DefaultSelection,
		statusTTL:    defaultStatusTTL,
		log:          debuglog.With("component", "tui"),
	}

	if initial.ID != "" {
		a.selection = Selection{ID: initial.ID, Label: entryLabel(initial.ID, initial.Title)}
	}

	a.homeDebounce = debounce.New(cfg.Search.Debounce, a.startHomeSearch)
	a.exploreDebounce = debounce.New(cfg.Search.Debounce, a.startExploreSearch)

	a.dropdown = dropdown.New("PDB id",
		dropdown.WithHeight[search.Molecule](cfg.Search.ListHeight),
		dropdown.WithPlaceholder[search.Molecule]("Type a molecule name..."),
		dropdown.WithOnSearch[search.Molecule](func(q string) tea.Cmd {
			return a.homeDebounce.Tick(q)
		}),
		dropdown.WithOnLoadMore[search.Molecule](a.loadMoreHome),
		dropdown.WithOnChange(func(it dropdown.Item[search.Molecule]) tea.Cmd {
			return a.selectEntry(Selection{ID: it.Value.ID, Label: it.Label})
		}),
	)
	a.dropdown.SetSelected(dropdown.Item[search.Molecule]{
		Value: search.Molecule{ID: a.selection.ID},
		Label: a.selection.Label,
	})

	a.keyHandler = NewKeyHandler(a, cfg)

	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		a.dropdown.Focus(),
		a.selectEntry(a.selection),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.renderStructure(false)

	case tea.KeyMsg:
		model, cmd := a.keyHandler.HandleKey(msg)
		return model, tea.Batch(cmd, a.drain())

	case tea.MouseMsg:
		cmds = append(cmds, a.handleMouse(msg))

	case debounce.FireMsg[string]:
		if !a.homeDebounce.Fire(msg) {
			a.exploreDebounce.Fire(msg)
		}

	case results.Event[search.Molecule]:
		if a.home.Apply(msg) {
			a.syncHome()
			st := a.home.Snapshot()
			cmds = append(cmds, a.reportSearch(msg.Outcome, msg.Kind, len(st.Items), st.TotalCount))
			if req := a.home.Fill(a.ctx, a.config.Search.ListHeight); req != nil {
				a.syncHome()
				cmds = append(cmds, runRequest(req), a.startSpinner())
			}
		}

	case results.Event[rcsb.EntryDetail]:
		if a.explore.Apply(msg) {
			if msg.Kind == results.KindNewSearch {
				a.exploreList.Select(0)
			}
			st := a.explore.Snapshot()
			cmds = append(cmds, a.syncExplore())
			cmds = append(cmds, a.reportSearch(msg.Outcome, msg.Kind, len(st.Items), st.TotalCount))
			if req := a.explore.Fill(a.ctx, a.exploreRows()); req != nil {
				cmds = append(cmds, runRequest(req), a.startSpinner())
			}
		}

	case viewer.LoadedMsg:
		if a.viewer.Accept(msg) {
			a.loadingEntry = false
			a.err = nil
			a.renderStructure(true)
			cmds = append(cmds, a.setStatus(MsgLoaded(msg.Structure.ID, msg.Structure.Size), StatusSuccess, a.statusTTL))
		}

	case viewer.FailedMsg:
		if a.viewer.Accept(msg) {
			a.loadingEntry = false
			a.err = wrapErr("loading "+msg.ID, msg.Err)
			a.log.Warnf("%v", a.err)
		}

	case openedMsg:
		cmds = append(cmds, a.setStatus(MsgOpened(msg.result.Program, msg.result.Target), StatusSuccess, a.statusTTL))

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}

	case errorMsg:
		a.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.dropdown, cmd = a.dropdown.Update(msg)
		cmds = append(cmds, cmd)
		if msg.ID == a.spinner.ID() {
			if a.busy() {
				a.spinner, cmd = a.spinner.Update(msg)
				cmds = append(cmds, cmd)
			} else {
				a.spinning = false
			}
		}

	default:
		// Cursor blink and other component housekeeping
		var cmd tea.Cmd
		switch a.view {
		case ViewHome:
			a.dropdown, cmd = a.dropdown.Update(msg)
		case ViewExplore:
			a.exploreInput, cmd = a.exploreInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, a.drain())
	return a, tea.Batch(cmds...)
}

func (a *App) busy() bool {
	return a.loadingEntry || a.home.Loading() || a.explore.Loading()
}

func (a *App) resize() {
	a.dropdown.SetWidth(a.width)
	a.viewport.Width = a.width
	a.help.Width = a.width

	inputWidth := a.width - 8
	if inputWidth < 10 {
		inputWidth = a.width - 4
	}
	a.exploreInput.Width = inputWidth

	listWidth := a.width
	if a.showBreakdown() {
		listWidth -= breakdownWidth + 1
	}
	// header, blank, framed input (3), blank, footer (2)
	listHeight := a.height - 8
	if listHeight < 5 {
		listHeight = 5
	}
	a.exploreList.SetSize(listWidth, listHeight)
}

func (a *App) showBreakdown() bool {
	return a.width >= 90
}

// exploreRows is how many entries fit in the explore list at once.
func (a *App) exploreRows() int {
	if a.exploreList.Paginator.PerPage > 0 {
		return a.exploreList.Paginator.PerPage
	}
	return a.config.Search.ListHeight
}

// renderStructure puts the current structure into the viewer pane.
func (a *App) renderStructure(top bool) {
	s := a.viewer.Current()
	if s == nil {
		return
	}
	a.viewport.SetContent(a.renderer.Render(s, a.width))
	if top {
		a.viewport.GotoTop()
	}
}

// syncHome mirrors the home store into the dropdown. It must run after the
// dropdown's own Update has been assigned back.
func (a *App) syncHome() {
	st := a.home.Snapshot()
	items := make([]dropdown.Item[search.Molecule], len(st.Items))
	for i, m := range st.Items {
		items[i] = dropdown.Item[search.Molecule]{Value: m, Label: moleculeLabel(m)}
	}
	a.dropdown.SetItems(items)
	a.queue(a.dropdown.SetLoading(st.Status == results.Loading))
}

func (a *App) syncExplore() tea.Cmd {
	st := a.explore.Snapshot()
	items := make([]list.Item, len(st.Items))
	for i, d := range st.Items {
		items[i] = entryItem{detail: d}
	}
	return a.exploreList.SetItems(items)
}

// reportSearch puts the outcome of a committed fetch in the status bar.
func (a *App) reportSearch(outcome results.Outcome, kind results.Kind, shown, total int) tea.Cmd {
	switch {
	case outcome == results.FetchAborted:
		return nil
	case outcome == results.FetchFailed && kind == results.KindLoadMore:
		return a.setStatus(MsgLoadMoreFailed, StatusWarn, a.statusTTL)
	case outcome == results.FetchFailed:
		return a.setStatus(MsgSearchFailed, StatusError, a.statusTTL)
	case total == 0:
		return a.setStatus(MsgNoResults, StatusWarn, a.statusTTL)
	default:
		return a.setStatus(MsgResultsCount(shown, total), StatusInfo, a.statusTTL)
	}
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch a.view {
	case ViewHome:
		wheel := msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown
		if msg.Y < a.dropdownY && wheel {
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return cmd
		}
		var cmd tea.Cmd
		a.dropdown, cmd = a.dropdown.Update(msg)
		// The dropdown is the only input on this surface; an outside click
		// closes it but keeps the keyboard on it.
		focus := a.dropdown.Focus()
		a.syncHome()
		return tea.Batch(cmd, focus)

	case ViewExplore:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			a.exploreList.CursorDown()
			return a.exploreNearEnd()
		case tea.MouseButtonWheelUp:
			a.exploreList.CursorUp()
		}
	}
	return nil
}

// shutdown cancels everything in flight and releases the viewer. Safe to
// call more than once.
func (a *App) shutdown() {
	if a.closed {
		return
	}
	a.closed = true
	a.homeDebounce.Stop()
	a.exploreDebounce.Stop()
	a.home.Cancel()
	a.explore.Cancel()
	a.viewer.Dispose()
	a.cancel()
}

// Close releases the App's resources after the program exits.
func (a *App) Close() {
	a.shutdown()
}

// CurrentView reports the active surface.
func (a *App) CurrentView() View {
	return a.view
}

// CurrentSelection reports the entry shown in the viewer pane.
func (a *App) CurrentSelection() Selection {
	return a.selection
}
