package tui

import (
	"github.com/pders01/pdbscope/internal/rcsb"
	"github.com/pders01/pdbscope/internal/search"
	"github.com/pders01/pdbscope/internal/tui/dropdown"
)

type View int

const (
	ViewHome View = iota
	ViewExplore
)

func (v View) String() string {
	if v == ViewExplore {
		return "explore"
	}
	return "home"
}

// Selection is the entry shown in the viewer pane.
type Selection struct {
	ID    string
	Label string
}

// DefaultSelection is shown when no deep link was given.
var DefaultSelection = Selection{ID: "1CRN", Label: "1CRN - CRAMBIN"}

// entryItem is an explore list row.
type entryItem struct {
	detail rcsb.EntryDetail
}

func (i entryItem) Title() string       { return i.detail.ID + " · " + i.detail.Title }
func (i entryItem) Description() string { return i.detail.Meta() }
func (i entryItem) FilterValue() string { return i.detail.Title }

func moleculeLabel(m search.Molecule) string {
	return m.Label()
}

func homeItem(sel Selection, title string) dropdown.Item[search.Molecule] {
	return dropdown.Item[search.Molecule]{
		Value: search.Molecule{ID: sel.ID, Title: title},
		Label: sel.Label,
	}
}
