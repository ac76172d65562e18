package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/pdbscope/internal/config"
	"github.com/pders01/pdbscope/internal/storage"
)

var errNoCache = errors.New("no cache configured; set cache.path or pass --cache")

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pdbscope %s\n", Version)
			fmt.Fprintln(out, "Protein Structure Browser")
			fmt.Fprintln(out, "github.com/pders01/pdbscope")
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".config", "pdbscope", "config.toml")
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	}
	generate.Flags().StringVar(&path, "path", "", "where to write the file (default ~/.config/pdbscope/config.toml)")

	cmd.AddCommand(generate)
	return cmd
}

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the entry metadata cache",
	}

	withCache := func(fn func(*cobra.Command, *storage.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, err := openCache(opts.cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return errNoCache
			}
			defer store.Close()
			return fn(cmd, store)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show cache statistics",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, s *storage.Store) error {
				stats, err := s.Stats()
				if err != nil {
					return fmt.Errorf("cache stats: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cache: %s\n", opts.cfg.Cache.Path)
				fmt.Fprintf(out, "  Details: %d\n", stats.Details)
				fmt.Fprintf(out, "  Titles:  %d\n", stats.Titles)
				fmt.Fprintf(out, "  Expired: %d\n", stats.Expired)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Drop entries older than cache.ttl",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, s *storage.Store) error {
				n, err := s.Prune()
				if err != nil {
					return fmt.Errorf("cache prune: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired entries\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached entry",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, s *storage.Store) error {
				if err := s.Clear(); err != nil {
					return fmt.Errorf("cache clear: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
				return nil
			}),
		},
	)
	return cmd
}
