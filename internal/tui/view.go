package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pdbscope/internal/rcsb"
	"github.com/pders01/pdbscope/internal/results"
)

func (a *App) View() string {
	footer := a.renderFooter()

	var content string
	switch a.view {
	case ViewExplore:
		content = a.renderExplore(a.height - lipgloss.Height(footer))
	default:
		content = a.renderHome(a.height - lipgloss.Height(footer))
	}

	return lipgloss.JoinVertical(lipgloss.Top, content, footer)
}

// renderHome lays out the header, the viewer pane and the dropdown at the
// bottom. The pane gives up rows while the dropdown is open.
func (a *App) renderHome(height int) string {
	header := renderHeader(CompactLogo, a.selection.Label, a.width)
	control := a.dropdown.View()

	paneHeight := height - lipgloss.Height(header) - lipgloss.Height(control)
	if paneHeight < 1 {
		paneHeight = 1
	}
	a.viewport.Height = paneHeight
	a.dropdownY = lipgloss.Height(header) + paneHeight
	a.dropdown.SetPosition(0, a.dropdownY)

	var pane string
	switch {
	case a.viewer.Current() != nil:
		pane = a.viewport.View()
	case a.loadingEntry:
		pane = renderCentered(a.width, paneHeight, renderMuted(a.spinner.View()+" "+MsgLoadingEntry))
	case a.err != nil:
		pane = renderCentered(a.width, paneHeight, ErrorMessageStyle.Render(MsgLoadFailed))
	default:
		pane = renderCentered(a.width, paneHeight, GetWelcomeMessage(a.keyHandler.modifierKey))
	}
	pane = lipgloss.NewStyle().Height(paneHeight).MaxHeight(paneHeight).Render(pane)

	return lipgloss.JoinVertical(lipgloss.Top, header, pane, control)
}

func (a *App) renderExplore(height int) string {
	st := a.explore.Snapshot()

	subtitle := ""
	if st.Query != "" {
		subtitle = fmt.Sprintf("%q", st.Query)
		if st.Status == results.Succeeded {
			subtitle += " • " + MsgResultsCount(len(st.Items), st.TotalCount)
		}
	}
	header := renderHeader("› explore", subtitle, a.width)
	input := renderInputFrame(a.exploreInput.View(), a.exploreInput.Focused(), a.exploreInput.Width)

	bodyHeight := height - lipgloss.Height(header) - lipgloss.Height(input) - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case len(st.Items) > 0:
		body = a.exploreList.View()
		if st.Status == results.Loading {
			body = lipgloss.JoinVertical(lipgloss.Left, body, renderMuted("  "+a.spinner.View()+" "+MsgLoadingMore))
		}
		if a.showBreakdown() {
			panel := renderBreakdown(rcsb.GroupByMethod(st.Items), breakdownWidth, bodyHeight)
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", panel)
		}
	case st.Status == results.Loading:
		body = renderCentered(a.width, bodyHeight, renderMuted(a.spinner.View()+" "+MsgSearching))
	case st.Status == results.Failed:
		body = renderCentered(a.width, bodyHeight, ErrorMessageStyle.Render(MsgSearchFailed))
	case st.Status == results.Succeeded:
		body = renderCentered(a.width, bodyHeight, renderMuted(MsgNoResults))
	default:
		body = renderCentered(a.width, bodyHeight, renderHelp("Search RCSB entries by keyword, e.g. hemoglobin"))
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Top, header, input, "", body))
}

// renderBreakdown draws a bar per experimental method over the entries that
// have both resolution and weight, with the resolution range of each group.
func renderBreakdown(groups []rcsb.MethodGroup, width, height int) string {
	rows := []string{HeaderStyle.Render("› methods")}
	if len(groups) == 0 {
		rows = append(rows, renderMuted("no entries with resolution and weight"))
		return PanelStyle.Width(width).Render(strings.Join(rows, "\n"))
	}

	most := len(groups[0].Entries)
	barMax := width - 22
	if barMax < 4 {
		barMax = 4
	}
	for _, g := range groups {
		n := len(g.Entries)
		bar := strings.Repeat("█", max(1, n*barMax/most))
		lo, hi := resolutionRange(g.Entries)
		rows = append(rows,
			fmt.Sprintf("%-16s %3d", truncateEnd(g.Method, 16), n),
			BarStyle.Render(bar)+" "+MetaStyle.Render(fmt.Sprintf("%.1f–%.1f Å", lo, hi)),
		)
		if len(rows) >= height-2 {
			break
		}
	}
	return PanelStyle.Width(width).Render(strings.Join(rows, "\n"))
}

func resolutionRange(entries []rcsb.EntryDetail) (lo, hi float64) {
	for i, e := range entries {
		r := e.Resolution.Value
		if i == 0 || r < lo {
			lo = r
		}
		if i == 0 || r > hi {
			hi = r
		}
	}
	return lo, hi
}

// renderFooter is the separator, the status line and the help for the
// current view.
func (a *App) renderFooter() string {
	var status string
	switch {
	case a.err != nil:
		status = ErrorMessageStyle.Render(fmt.Sprintf("✗ %v", a.err))
	case a.status != "":
		status = a.statusKind.style().Render(a.status)
		if a.busy() {
			status = a.spinner.View() + " " + status
		}
	}

	helpView := a.help.View(a.keyHandler.helpKeys())
	line := helpView
	if status != "" {
		line = status + renderMuted(" • ") + helpView
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		renderSeparator(a.width),
		StatusBarStyle.Width(a.width).Render(line),
	)
}
