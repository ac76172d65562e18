package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pdbscope/internal/config"
)

type keyMap struct {
	Quit    key.Binding
	Home    key.Binding
	Explore key.Binding
	Search  key.Binding
	Open    key.Binding
	Reload  key.Binding
	Back    key.Binding
	Help    key.Binding
	Select  key.Binding
	Focus   key.Binding

	view View
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings
	bind := func(k, desc string) key.Binding {
		return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
	}
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys(mod+b.Quit, "ctrl+c"), key.WithHelp(mod+b.Quit, "quit")),
		Home:    bind(mod+b.Home, "home"),
		Explore: bind(mod+b.Explore, "explore"),
		Search:  bind(mod+b.Search, "search"),
		Open:    bind(mod+b.Open, "open in viewer"),
		Reload:  bind(mod+b.Reload, "reload"),
		Back:    bind(b.Back, "back"),
		Help:    bind(b.Help, "help"),
		Select:  bind("enter", "select"),
		Focus:   key.NewBinding(key.WithKeys("tab", "/"), key.WithHelp("tab", "switch focus")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	if k.view == ViewExplore {
		return []key.Binding{k.Select, k.Focus, k.Back, k.Open, k.Help}
	}
	return []key.Binding{k.Search, k.Explore, k.Open, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	if k.view == ViewExplore {
		return [][]key.Binding{
			{k.Select, k.Focus, k.Back},
			{k.Search, k.Reload, k.Open},
			{k.Home, k.Help, k.Quit},
		}
	}
	return [][]key.Binding{
		{k.Search, k.Select},
		{k.Explore, k.Reload, k.Open},
		{k.Help, k.Quit},
	}
}

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	keys        keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{
		app:         app,
		config:      cfg,
		modifierKey: cfg.Keys.Modifier + "+",
		keys:        newKeyMap(cfg),
	}
}

// helpKeys is the key map for the status bar of the current view.
func (kh *KeyHandler) helpKeys() keyMap {
	k := kh.keys
	k.view = kh.app.view
	return k
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model, cmd, handled := kh.handleGlobalKeys(msg); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewHome:
		return kh.app.dropdown.IsOpen()
	case ViewExplore:
		return kh.app.exploreInput.Focused()
	default:
		return false
	}
}

// handleGlobalKeys handles modifier chords, which work even while typing.
func (kh *KeyHandler) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Quit):
		a.shutdown()
		return a, tea.Quit, true

	case key.Matches(msg, kh.keys.Explore):
		model, cmd := kh.enterExplore()
		return model, cmd, true

	case key.Matches(msg, kh.keys.Search):
		if a.view == ViewExplore {
			return a, a.exploreInput.Focus(), true
		}
		cmd := a.dropdown.Open()
		return a, cmd, true

	case key.Matches(msg, kh.keys.Open):
		return a, a.openExternal(kh.openTarget()), true

	case key.Matches(msg, kh.keys.Reload):
		return a, kh.reload(), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	if a.view == ViewHome {
		return a, kh.updateDropdown(msg)
	}

	hasItems := len(a.exploreList.Items()) > 0
	switch msg.String() {
	case "esc":
		if hasItems {
			a.exploreInput.Blur()
			return a, nil
		}
		return kh.navigateHome()

	case "enter":
		// Search now rather than waiting out the debounce
		a.exploreDebounce.Stop()
		if sanitizeSearchInput(a.exploreInput.Value()) == "" {
			a.explore.Clear()
			return a, a.syncExplore()
		}
		a.startExploreSearch(a.exploreInput.Value())
		a.exploreInput.Blur()
		return a, nil

	case "tab", "down":
		if hasItems {
			a.exploreInput.Blur()
		}
		return a, nil
	}

	prev := a.exploreInput.Value()
	var cmd tea.Cmd
	a.exploreInput, cmd = a.exploreInput.Update(msg)
	if val := a.exploreInput.Value(); val != prev {
		return a, tea.Batch(cmd, a.exploreDebounce.Tick(val))
	}
	return a, cmd
}

// handleCustomKeys handles keys that mean something only outside text input.
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch {
	case key.Matches(msg, kh.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil, true
	case key.Matches(msg, kh.keys.Home):
		model, cmd := kh.navigateHome()
		return model, cmd, true
	}

	switch a.view {
	case ViewHome:
		switch msg.String() {
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd, true
		}

	case ViewExplore:
		switch {
		case key.Matches(msg, kh.keys.Back):
			model, cmd := kh.navigateHome()
			return model, cmd, true
		case key.Matches(msg, kh.keys.Focus):
			return a, a.exploreInput.Focus(), true
		case key.Matches(msg, kh.keys.Select):
			model, cmd := kh.selectExploreEntry()
			return model, cmd, true
		}
	}
	return a, nil, false
}

// delegateToCharm lets the components handle everything we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch a.view {
	case ViewHome:
		return a, kh.updateDropdown(msg)

	case ViewExplore:
		var cmd tea.Cmd
		a.exploreList, cmd = a.exploreList.Update(msg)
		return a, tea.Batch(cmd, a.exploreNearEnd())
	}
	return a, nil
}

// updateDropdown forwards msg to the home dropdown and mirrors the store
// back into it, since its callbacks may have started a fetch.
func (kh *KeyHandler) updateDropdown(msg tea.Msg) tea.Cmd {
	a := kh.app
	var cmd tea.Cmd
	a.dropdown, cmd = a.dropdown.Update(msg)
	a.syncHome()
	return cmd
}

func (kh *KeyHandler) selectExploreEntry() (tea.Model, tea.Cmd) {
	a := kh.app
	item, ok := a.exploreList.SelectedItem().(entryItem)
	if !ok {
		return a, nil
	}
	sel := Selection{ID: item.detail.ID, Label: entryLabel(item.detail.ID, item.detail.Title)}
	model, cmd := kh.navigateHome()
	a.dropdown.SetSelected(homeItem(sel, item.detail.Title))
	return model, tea.Batch(cmd, a.selectEntry(sel))
}

// navigateHome leaves explore. Its outstanding fetch is abandoned; the
// results themselves stay for the next visit.
func (kh *KeyHandler) navigateHome() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.view == ViewExplore {
		a.exploreDebounce.Stop()
		a.explore.Cancel()
		a.exploreInput.Blur()
		cmds := []tea.Cmd{a.syncExplore()}
		a.view = ViewHome
		cmds = append(cmds, a.dropdown.Focus())
		return a, tea.Batch(cmds...)
	}
	return a, nil
}

func (kh *KeyHandler) enterExplore() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.view == ViewExplore {
		return a, a.exploreInput.Focus()
	}
	a.homeDebounce.Stop()
	a.home.Cancel()
	a.dropdown.Close()
	a.syncHome()
	a.view = ViewExplore
	return a, a.exploreInput.Focus()
}

// openTarget is the entry the open key refers to: the highlighted explore
// entry when the list has focus, otherwise the current selection.
func (kh *KeyHandler) openTarget() string {
	a := kh.app
	if a.view == ViewExplore && !a.exploreInput.Focused() {
		if item, ok := a.exploreList.SelectedItem().(entryItem); ok {
			return item.detail.ID
		}
	}
	return a.selection.ID
}

func (kh *KeyHandler) reload() tea.Cmd {
	a := kh.app
	if a.view == ViewExplore {
		q := a.explore.Snapshot().Query
		if q == "" {
			q = a.exploreInput.Value()
		}
		a.exploreDebounce.Stop()
		a.startExploreSearch(q)
		return nil
	}
	return a.selectEntry(a.selection)
}

// maxQueryRunes is the CharLimit of the search inputs.
const maxQueryRunes = 256

// sanitizeSearchInput trims, flattens and limits a search query
func sanitizeSearchInput(input string) string {
	input = strings.TrimSpace(input)

	if r := []rune(input); len(r) > maxQueryRunes {
		input = string(r[:maxQueryRunes])
	}

	input = strings.ReplaceAll(input, "\n", " ")
	input = strings.ReplaceAll(input, "\r", " ")
	input = strings.ReplaceAll(input, "\t", " ")

	for strings.Contains(input, "  ") {
		input = strings.ReplaceAll(input, "  ", " ")
	}

	return strings.TrimSpace(input)
}
