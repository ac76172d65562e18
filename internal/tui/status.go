package tui

import (
	"fmt"

	"github.com/pders01/pdbscope/internal/rcsb"
)

// Short status messages used across the app.
const (
	MsgSearching      = "Searching…"
	MsgLoadingMore    = "Loading more…"
	MsgLoadingEntry   = "Loading structure…"
	MsgNoResults      = "No results"
	MsgSearchFailed   = "Search failed"
	MsgLoadMoreFailed = "Could not load more results"
	MsgNothingToOpen  = "No structure selected"
	MsgLoadFailed     = "Could not load structure"
)

func MsgResultsCount(shown, total int) string {
	if total == 1 {
		return "1 result"
	}
	if shown < total {
		return fmt.Sprintf("%d of %d results", shown, total)
	}
	return fmt.Sprintf("%d results", total)
}

func MsgLoaded(s string, bytes int) string {
	return fmt.Sprintf("Loaded %s (%s)", s, formatBytes(bytes))
}

func MsgOpened(program, target string) string {
	return fmt.Sprintf("Opened %s in %s", truncateMiddle(target, 48), program)
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// entryLabel is the dropdown form of an entry, "ID - Title".
func entryLabel(id, title string) string {
	if title == "" {
		title = rcsb.UnknownTitle
	}
	return id + " - " + title
}
