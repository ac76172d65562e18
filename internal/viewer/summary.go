package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/pders01/pdbscope/internal/rcsb"
)

// Markdown describes s for display.
func Markdown(s *Structure) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	h := s.Header

	fmt.Fprintf(&b, "# %s\n\n", s.Label)
	if h.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", h.Title)
	}

	b.WriteString("| | |\n|---|---|\n")
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", k, v)
		}
	}
	row("Classification", h.Classification)
	row("Deposited", h.Deposited)

	method := h.Method
	res := h.Resolution
	if d, ok := s.Detail.Get(); ok {
		if m, ok := d.ExperimentalMethod.Get(); ok {
			method = m
		}
		if d.Resolution.Valid {
			res = d.Resolution
		}
		row("Molecular weight", rcsb.FormatWeight(d.MolecularWeight))
		if n, ok := d.PolymerMonomerCount.Get(); ok {
			row("Polymer monomers", fmt.Sprintf("%d", n))
		}
	}
	row("Method", method)
	row("Resolution", rcsb.FormatResolution(res))
	if h.Models > 1 {
		row("Models", fmt.Sprintf("%d", h.Models))
	}
	row("Atoms", fmt.Sprintf("%d", h.Atoms))
	if h.Waters > 0 {
		row("Waters", fmt.Sprintf("%d", h.Waters))
	}

	if len(h.Chains) > 0 {
		b.WriteString("\n## Chains\n\n| Chain | Residues | Atoms |\n|---|---|---|\n")
		for _, c := range h.Chains {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", c.ID, c.Residues, c.Atoms)
		}
	}
	if len(h.Ligands) > 0 {
		fmt.Fprintf(&b, "\n**Ligands:** %s\n", strings.Join(h.Ligands, ", "))
	}
	return b.String()
}

// Renderer turns Markdown into terminal output, rebuilding the glamour
// renderer only when the width changes noticeably.
type Renderer struct {
	r     *glamour.TermRenderer
	width int
	style string
}

// NewRenderer uses the named glamour style; "" picks one from the terminal
// background.
func NewRenderer(style string) *Renderer {
	return &Renderer{style: style}
}

func wrapWidth(width int) int {
	w := (width * 9) / 10
	if w > 120 {
		w = 120
	}
	if w < 40 {
		w = 40
	}
	if width < 50 {
		w = width - 4
		if w < 20 {
			w = 20
		}
	}
	return w
}

func (r *Renderer) get(width int) (*glamour.TermRenderer, error) {
	w := wrapWidth(width)
	if r.r != nil && abs(r.width-w) <= 10 {
		return r.r, nil
	}

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(w))
	if err != nil {
		return nil, err
	}
	r.r = tr
	r.width = w
	return tr, nil
}

// Render renders s for a pane of the given width. Without a usable renderer
// the raw markdown is returned.
func (r *Renderer) Render(s *Structure, width int) string {
	md := Markdown(s)
	tr, err := r.get(width)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
