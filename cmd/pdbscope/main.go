package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/pdbscope/internal/config"
	"github.com/pders01/pdbscope/internal/debuglog"
	"github.com/pders01/pdbscope/internal/launcher"
	"github.com/pders01/pdbscope/internal/rcsb"
	"github.com/pders01/pdbscope/internal/search"
	"github.com/pders01/pdbscope/internal/storage"
	"github.com/pders01/pdbscope/internal/tui"
	"github.com/pders01/pdbscope/internal/validation"
	"github.com/pders01/pdbscope/internal/viewer"
)

// Version is the version of the application, set at build time
var Version = "dev"

const (
	exitCodeError       = 1
	exitCodeInterrupted = 130
)

// options are the flags shared by every command.
type options struct {
	configPath     string
	cachePath      string
	logLevel       string
	logDefault     bool
	localEndpoints bool
	quiet          bool

	pdb   string
	title string
	link  string

	cfg *config.Config
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return exitCodeInterrupted
		}
		return exitCodeError
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pdbscope",
		Short: "Browse Protein Data Bank structures from the terminal",
		Long: `pdbscope searches the RCSB Protein Data Bank as you type and shows a
summary of the selected structure. Without a subcommand it starts the
interactive browser.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(cmd.Context(), opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = debuglog.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to configuration file")
	pf.StringVar(&opts.cachePath, "cache", "", "path to the metadata cache (overrides config)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error, off (overrides config)")
	pf.BoolVar(&opts.logDefault, "log", false, "log at info level to ~/.pdbscope/pdbscope.log")
	pf.BoolVar(&opts.localEndpoints, "local-endpoints", false, "allow plain http and loopback API endpoints, e.g. a local mirror")

	f := root.Flags()
	f.StringVar(&opts.pdb, "pdb", "", "entry to show first, e.g. 4HHB")
	f.StringVar(&opts.title, "title", "", "title shown for --pdb")
	f.StringVar(&opts.link, "link", "", "deep link such as '?pdb=4HHB&title=HEMOGLOBIN'")
	f.BoolVar(&opts.quiet, "quiet", false, "skip the startup banner")
	root.MarkFlagsMutuallyExclusive("link", "pdb")

	root.AddCommand(
		newSearchCmd(opts),
		newCacheCmd(opts),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "config":
			return true
		}
	}
	return false
}

// load reads the configuration, applies flag overrides and starts logging.
func (o *options) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if o.cachePath != "" {
		cfg.Cache.Path = o.cachePath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if err := normalizeEndpoints(&cfg.API, o.localEndpoints); err != nil {
		return err
	}

	if o.logDefault {
		debuglog.SetupWithBool(true)
	} else if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	o.cfg = cfg
	return nil
}

// normalizeEndpoints validates the configured API URLs. Local mirrors need
// the permissive rules.
func normalizeEndpoints(api *config.APIConfig, local bool) error {
	v := validation.NewEndpointValidator()
	if local {
		v = validation.NewPermissiveEndpointValidator()
	}

	for name, u := range map[string]*string{
		"search_url":  &api.SearchURL,
		"graphql_url": &api.GraphQLURL,
		"files_url":   &api.FilesURL,
		"entry_url":   &api.EntryURL,
	} {
		if *u == "" && name == "entry_url" {
			continue
		}
		norm, err := v.ValidateAndNormalize(*u)
		if err != nil {
			return fmt.Errorf("api.%s: %w", name, err)
		}
		*u = norm
	}
	return nil
}

// deepLink resolves the initial selection from --link or --pdb/--title.
func (o *options) deepLink() (validation.DeepLink, error) {
	var (
		link validation.DeepLink
		err  error
	)
	if o.link != "" {
		link, _, err = validation.ParseDeepLink(o.link)
	} else {
		link, _, err = validation.NewDeepLink(o.pdb, o.title)
	}
	if err != nil {
		return validation.DeepLink{}, fmt.Errorf("initial entry: %w", err)
	}
	return link, nil
}

// openCache opens the metadata cache when a path is configured. A nil store
// means the session runs without one.
func openCache(cfg *config.Config) (*storage.Store, error) {
	if cfg.Cache.Path == "" {
		return nil, nil
	}
	path, err := validation.PrepareFilePath(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("cache path: %w", err)
	}
	return storage.NewStore(path, cfg.Cache.TTL)
}

// fetchers builds both search surfaces over one client, sharing the cache
// when there is one.
func fetchers(client *rcsb.Client, cache *storage.Store) (*search.MoleculeFetcher, *search.EntryFetcher) {
	if cache == nil {
		return search.NewMoleculeFetcher(client, nil), search.NewEntryFetcher(client, nil)
	}
	return search.NewMoleculeFetcher(client, cache), search.NewEntryFetcher(client, cache)
}

func runBrowser(ctx context.Context, opts *options) error {
	cfg := opts.cfg
	link, err := opts.deepLink()
	if err != nil {
		return err
	}

	if !opts.quiet {
		tui.ShowBanner(Version)
	}

	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	client := rcsb.NewClient(cfg.API)
	molecules, entries := fetchers(client, cache)

	tui.ApplyColors(cfg.UI.Colors)
	app := tui.NewApp(cfg, tui.Deps{
		Molecules: molecules,
		Entries:   entries,
		Viewer:    viewer.New(client),
		Launcher:  launcher.NewLauncher(cfg.API),
	}, link)
	defer app.Close()

	debuglog.Infof("starting %s %s", tui.AppName, Version)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
