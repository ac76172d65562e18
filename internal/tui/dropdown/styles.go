package dropdown

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Label       lipgloss.Style
	Value       lipgloss.Style
	Placeholder lipgloss.Style
	Item        lipgloss.Style
	Highlighted lipgloss.Style
	Loading     lipgloss.Style
	Empty       lipgloss.Style
	Scroll      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Label:       lipgloss.NewStyle().Bold(true),
		Value:       lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Faint(true),
		Item:        lipgloss.NewStyle().PaddingLeft(2),
		Highlighted: lipgloss.NewStyle().PaddingLeft(1).Bold(true).Reverse(true),
		Loading:     lipgloss.NewStyle().Faint(true),
		Empty:       lipgloss.NewStyle().Faint(true).Italic(true),
		Scroll:      lipgloss.NewStyle().Faint(true),
	}
}
