// Package dropdown is a searchable selection control for Bubble Tea. It can
// filter its own options or hand the query to a remote search and render
// whatever options the caller feeds back, with scroll-triggered paging.
package dropdown

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	MsgLoading   = "Loading..."
	MsgNoResults = "No results"
)

// Item is one selectable option.
type Item[T any] struct {
	Value T
	Label string
}

// Option configures a Model.
type Option[T any] func(*Model[T])

// WithOnSearch makes the control delegate filtering: every keystroke that
// changes the query is passed to fn, and the options shown are exactly
// those set with SetItems.
func WithOnSearch[T any](fn func(query string) tea.Cmd) Option[T] {
	return func(m *Model[T]) { m.onSearch = fn }
}

// WithOnLoadMore is called when scrolling brings the end of the list within
// the load-more threshold.
func WithOnLoadMore[T any](fn func() tea.Cmd) Option[T] {
	return func(m *Model[T]) { m.onLoadMore = fn }
}

// WithOnChange is called with the chosen item on selection.
func WithOnChange[T any](fn func(Item[T]) tea.Cmd) Option[T] {
	return func(m *Model[T]) { m.onChange = fn }
}

// WithHeight sets the number of option rows shown at once.
func WithHeight[T any](rows int) Option[T] {
	return func(m *Model[T]) {
		if rows > 0 {
			m.height = rows
		}
	}
}

// WithLoadMoreThreshold sets how many hidden rows below the window still
// count as "near the end".
func WithLoadMoreThreshold[T any](rows int) Option[T] {
	return func(m *Model[T]) {
		if rows >= 0 {
			m.threshold = rows
		}
	}
}

// WithPlaceholder sets the input placeholder shown while open.
func WithPlaceholder[T any](text string) Option[T] {
	return func(m *Model[T]) { m.input.Placeholder = text }
}

// WithStyles replaces the default styles.
func WithStyles[T any](s Styles) Option[T] {
	return func(m *Model[T]) { m.styles = s }
}

type Model[T any] struct {
	label    string
	items    []Item[T]
	selected *Item[T]

	input       textinput.Model
	spinner     spinner.Model
	open        bool
	focused     bool
	loading     bool
	highlighted int
	offset      int
	height      int
	threshold   int
	width       int

	// Screen position of the first row, for mouse hit-testing.
	x, y int

	onSearch   func(string) tea.Cmd
	onLoadMore func() tea.Cmd
	onChange   func(Item[T]) tea.Cmd

	styles Styles
}

func New[T any](label string, opts ...Option[T]) Model[T] {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Type to search..."
	ti.CharLimit = 256

	m := Model[T]{
		label:     label,
		items:     []Item[T]{},
		input:     ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		height:    8,
		threshold: 1,
		width:     60,
		styles:    DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.spinner.Style = m.styles.Loading
	return m
}

func (m Model[T]) IsOpen() bool       { return m.open }
func (m Model[T]) Focused() bool      { return m.focused }
func (m Model[T]) Query() string      { return m.input.Value() }
func (m Model[T]) Highlighted() int   { return m.highlighted }
func (m Model[T]) Offset() int        { return m.offset }
func (m Model[T]) Loading() bool      { return m.loading }
func (m Model[T]) RemoteSearch() bool { return m.onSearch != nil }

// Selected returns the current selection, if any.
func (m Model[T]) Selected() (Item[T], bool) {
	if m.selected == nil {
		return Item[T]{}, false
	}
	return *m.selected, true
}

// SetSelected sets the selection without firing the change callback, e.g.
// for a default or deep-linked entry.
func (m *Model[T]) SetSelected(it Item[T]) {
	m.selected = &it
}

// SetItems replaces the options. The highlight is kept in range.
func (m *Model[T]) SetItems(items []Item[T]) {
	m.items = append([]Item[T]{}, items...)
	m.clamp()
}

func (m Model[T]) Items() []Item[T] {
	return m.items
}

// SetLoading toggles the loading indicator. Turning it on returns the
// spinner's tick.
func (m *Model[T]) SetLoading(loading bool) tea.Cmd {
	was := m.loading
	m.loading = loading
	if loading && !was {
		return m.spinner.Tick
	}
	return nil
}

func (m *Model[T]) SetWidth(w int) {
	if w > 0 {
		m.width = w
		m.input.Width = w - len(m.label) - 4
	}
}

// SetPosition records where the control is drawn so mouse events can be
// mapped to rows.
func (m *Model[T]) SetPosition(x, y int) {
	m.x, m.y = x, y
}

func (m *Model[T]) Focus() tea.Cmd {
	m.focused = true
	if m.open {
		return m.input.Focus()
	}
	return nil
}

// Blur is an outside interaction: the control loses focus and closes.
func (m *Model[T]) Blur() {
	m.focused = false
	m.Close()
}

// Open shows the option list and focuses the query input.
func (m *Model[T]) Open() tea.Cmd {
	if m.open {
		return nil
	}
	m.open = true
	m.focused = true
	m.highlighted = 0
	m.offset = 0
	return m.input.Focus()
}

// Close hides the list and resets the query, whatever the reason.
func (m *Model[T]) Close() {
	m.open = false
	m.input.Reset()
	m.input.Blur()
	m.highlighted = 0
	m.offset = 0
}

// Visible returns the options currently listed: all items under remote
// search, otherwise those whose label contains the query, ignoring case.
func (m Model[T]) Visible() []Item[T] {
	q := strings.ToLower(m.input.Value())
	if m.onSearch != nil || q == "" {
		return m.items
	}
	var out []Item[T]
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.Label), q) {
			out = append(out, it)
		}
	}
	return out
}

func (m *Model[T]) clamp() {
	n := len(m.Visible())
	if m.highlighted > n-1 {
		m.highlighted = n - 1
	}
	if m.highlighted < 0 {
		m.highlighted = 0
	}
	if maxOff := n - m.height; m.offset > maxOff {
		m.offset = max(maxOff, 0)
	}
}

func (m Model[T]) Init() tea.Cmd {
	return nil
}

func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.open {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model[T]) handleKey(msg tea.KeyMsg) (Model[T], tea.Cmd) {
	switch msg.String() {
	case "down", "ctrl+n":
		if !m.open {
			return m, m.Open()
		}
		if n := len(m.Visible()); m.highlighted < n-1 {
			m.highlighted++
		}
		return m, m.follow(true)

	case "up", "ctrl+p":
		if m.highlighted > 0 {
			m.highlighted--
		}
		return m, m.follow(false)

	case "enter":
		if !m.open {
			return m, m.Open()
		}
		visible := m.Visible()
		if m.highlighted < len(visible) {
			return m, m.choose(visible[m.highlighted])
		}
		return m, nil

	case "esc":
		if m.open {
			m.Close()
		}
		return m, nil

	case "pgdown":
		return m, m.scroll(m.height)

	case "pgup":
		return m, m.scroll(-m.height)
	}

	var openCmd tea.Cmd
	if !m.open {
		openCmd = m.Open()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return m, tea.Batch(openCmd, cmd, m.queryChanged(after))
	}
	return m, tea.Batch(openCmd, cmd)
}

// queryChanged resets the highlight and scroll position and forwards the
// query when search is remote.
func (m *Model[T]) queryChanged(q string) tea.Cmd {
	m.highlighted = 0
	m.offset = 0
	if m.onSearch != nil {
		return m.onSearch(q)
	}
	return nil
}

func (m *Model[T]) choose(it Item[T]) tea.Cmd {
	m.selected = &it
	m.Close()
	if m.onChange != nil {
		return m.onChange(it)
	}
	return nil
}

// follow moves the window so the highlight stays visible. Moving down
// onto the last row counts as reaching the end even when the whole list
// fits in the window.
func (m *Model[T]) follow(down bool) tea.Cmd {
	off := m.offset
	if m.highlighted < off {
		off = m.highlighted
	}
	if m.highlighted >= off+m.height {
		off = m.highlighted - m.height + 1
	}
	moved := off != m.offset
	m.offset = off
	if !down {
		return nil
	}
	if !moved && m.highlighted < len(m.Visible())-1 {
		return nil
	}
	return m.nearEnd()
}

// scroll moves the window by delta rows. Every scroll event is a chance to
// load more, even when the window is already at the end.
func (m *Model[T]) scroll(delta int) tea.Cmd {
	if !m.open {
		return nil
	}
	n := len(m.Visible())
	off := m.offset + delta
	if maxOff := n - m.height; off > maxOff {
		off = maxOff
	}
	if off < 0 {
		off = 0
	}
	m.offset = off
	if m.highlighted < off {
		m.highlighted = off
	}
	if last := off + m.height - 1; m.highlighted > last && last >= 0 {
		m.highlighted = min(last, n-1)
	}
	if delta <= 0 {
		return nil
	}
	return m.nearEnd()
}

// nearEnd requests more options when at most threshold rows remain hidden
// below the window.
func (m *Model[T]) nearEnd() tea.Cmd {
	if m.onLoadMore == nil || m.loading {
		return nil
	}
	hidden := len(m.Visible()) - (m.offset + m.height)
	if hidden > m.threshold {
		return nil
	}
	return m.onLoadMore()
}

func (m Model[T]) handleMouse(msg tea.MouseMsg) (Model[T], tea.Cmd) {
	row := msg.Y - m.y
	if msg.X < m.x || msg.X >= m.x+m.width {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.open {
			m.Blur()
		}
		return m, nil
	}

	switch {
	case msg.Button == tea.MouseButtonWheelDown:
		return m, m.scroll(1)
	case msg.Button == tea.MouseButtonWheelUp:
		return m, m.scroll(-1)
	}

	listRows := m.listRows()
	inList := m.open && row >= 1 && row <= listRows
	idx := m.offset + row - 1

	switch msg.Action {
	case tea.MouseActionMotion:
		if inList && idx < len(m.Visible()) {
			m.highlighted = idx
		}
		return m, nil

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if row == 0 {
			if m.open {
				m.Close()
				return m, nil
			}
			return m, m.Open()
		}
		visible := m.Visible()
		if inList && idx < len(visible) {
			return m, m.choose(visible[idx])
		}
		if m.open {
			m.Blur()
		}
	}
	return m, nil
}

// listRows is how many option rows are drawn.
func (m Model[T]) listRows() int {
	return min(len(m.Visible())-m.offset, m.height)
}
