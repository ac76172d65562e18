package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/pdbscope/internal/rcsb"
	"github.com/pders01/pdbscope/internal/results"
	"github.com/pders01/pdbscope/internal/search"
	"github.com/pders01/pdbscope/internal/tui"
)

var errSearchFailed = errors.New("search failed")

func newSearchCmd(opts *options) *cobra.Command {
	var (
		entries bool
		pages   int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the PDB and print the matching entries",
		Long: `Search runs the same full-text query as the interactive browser and
prints one page of results per --pages. With --entries each result also
shows its experimental method, resolution and molecular weight.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}

			cache, err := openCache(opts.cfg)
			if err != nil {
				return err
			}
			if cache != nil {
				defer cache.Close()
			}

			molecules, details := fetchers(rcsb.NewClient(opts.cfg.API), cache)
			out := cmd.OutOrStdout()
			if entries {
				return printSearch(cmd.Context(), out, details, query, pages, printEntry)
			}
			return printSearch(cmd.Context(), out, molecules, query, pages, printMolecule)
		},
	}

	cmd.Flags().BoolVar(&entries, "entries", false, "include method, resolution and weight")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of result pages to fetch")
	return cmd
}

func printSearch[T any](ctx context.Context, w io.Writer, f search.Fetcher[T], query string, pages int, line func(io.Writer, T)) error {
	store := results.NewStore(f)

	st := store.Search(ctx, query)
	for n := 1; n < pages && st.HasMore; n++ {
		var ok bool
		if st, ok = store.More(ctx); !ok {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if st.Status == results.Failed && len(st.Items) == 0 {
		return fmt.Errorf("%w for %q", errSearchFailed, query)
	}
	if len(st.Items) == 0 {
		fmt.Fprintln(w, tui.MsgNoResults)
		return nil
	}

	for _, item := range st.Items {
		line(w, item)
	}
	fmt.Fprintf(w, "\n%s\n", tui.MsgResultsCount(len(st.Items), st.TotalCount))
	return nil
}

func printMolecule(w io.Writer, m search.Molecule) {
	fmt.Fprintf(w, "%-6s %s\n", m.ID, m.Title)
}

func printEntry(w io.Writer, d rcsb.EntryDetail) {
	fmt.Fprintf(w, "%-6s %s\n       %s\n", d.ID, d.Title, d.Meta())
}
