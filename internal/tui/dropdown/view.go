package dropdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

func (m Model[T]) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Label.Render(m.label + " › "))

	if !m.open {
		if it, ok := m.Selected(); ok {
			b.WriteString(m.styles.Value.Render(m.fit(it.Label, len(m.label)+5)))
		} else {
			b.WriteString(m.styles.Placeholder.Render("select…"))
		}
		b.WriteString(m.styles.Scroll.Render(" ▾"))
		return b.String()
	}

	b.WriteString(m.input.View())

	visible := m.Visible()
	switch {
	case m.loading && len(visible) == 0:
		b.WriteString("\n" + m.loadingRow())
		return b.String()
	case len(visible) == 0:
		b.WriteString("\n" + m.styles.Empty.Render("  "+MsgNoResults))
		return b.String()
	}

	end := min(m.offset+m.height, len(visible))
	for i := m.offset; i < end; i++ {
		b.WriteByte('\n')
		if i == m.highlighted {
			b.WriteString(m.styles.Highlighted.Render("›" + m.fit(visible[i].Label, 3)))
		} else {
			b.WriteString(m.styles.Item.Render(m.fit(visible[i].Label, 2)))
		}
	}

	if m.loading {
		b.WriteString("\n" + m.loadingRow())
	} else if hidden := len(visible) - end; hidden > 0 {
		b.WriteString("\n" + m.styles.Scroll.Render(fmt.Sprintf("  ↓ %d more", hidden)))
	}
	return b.String()
}

func (m Model[T]) loadingRow() string {
	return m.styles.Loading.Render("  " + m.spinner.View() + " " + MsgLoading)
}

func (m Model[T]) fit(s string, used int) string {
	w := m.width - used
	if w < 1 {
		w = 1
	}
	return ansi.Truncate(s, w, "…")
}
