package launcher

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition describes how to hand an entry to a molecular viewer.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Args        []string `toml:"args"`
}

// ViewersConfig is the layout of viewers.toml.
type ViewersConfig struct {
	Order   []string                    `toml:"order"`
	Openers map[string]string           `toml:"openers"`
	Viewers map[string]ViewerDefinition `toml:"viewers"`
}

// Registry holds the known viewers, built-in definitions merged with the
// user's own.
type Registry struct {
	order   []string
	openers map[string]string
	viewers map[string]ViewerDefinition
}

// NewRegistry parses the embedded definitions and merges
// ~/.config/pdbscope/viewers.toml when present.
func NewRegistry() (*Registry, error) {
	r, err := parseRegistry(viewersTOML)
	if err != nil {
		return nil, err
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.mergeFile(filepath.Join(home, ".config", "pdbscope", "viewers.toml"))
	}
	return r, nil
}

func parseRegistry(data []byte) (*Registry, error) {
	var cfg ViewersConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}
	r := &Registry{
		order:   cfg.Order,
		openers: cfg.Openers,
		viewers: cfg.Viewers,
	}
	if r.openers == nil {
		r.openers = map[string]string{}
	}
	if r.viewers == nil {
		r.viewers = map[string]ViewerDefinition{}
	}
	return r, nil
}

// mergeFile overlays user definitions. User viewers not named in the order
// are tried first.
func (r *Registry) mergeFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	user, err := parseRegistry(data)
	if err != nil {
		return
	}
	r.merge(user)
}

func (r *Registry) merge(user *Registry) {
	for name, def := range user.viewers {
		r.viewers[name] = def
	}
	for platform, opener := range user.openers {
		r.openers[platform] = opener
	}
	if len(user.order) > 0 {
		r.order = user.order
		return
	}
	var extra []string
	for name := range user.viewers {
		if !slices.Contains(r.order, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	r.order = append(extra, r.order...)
}

// Candidates lists the viewers usable on this platform in preference order.
func (r *Registry) Candidates() []string {
	var out []string
	for _, name := range r.order {
		def, ok := r.viewers[name]
		if !ok {
			continue
		}
		if len(def.Platforms) == 0 || slices.Contains(def.Platforms, runtime.GOOS) {
			out = append(out, name)
		}
	}
	return out
}

// Args expands a viewer's argument template.
func (r *Registry) Args(name, id, url string) ([]string, error) {
	def, ok := r.viewers[name]
	if !ok {
		return nil, fmt.Errorf("unknown viewer %q", name)
	}
	rep := strings.NewReplacer("{id}", id, "{url}", url)
	args := make([]string, 0, len(def.Args))
	for _, a := range def.Args {
		args = append(args, rep.Replace(a))
	}
	return args, nil
}

// Opener is the platform's generic "open this URL" command.
func (r *Registry) Opener() string {
	if o, ok := r.openers[runtime.GOOS]; ok && o != "" {
		return o
	}
	if o, ok := r.openers["fallback"]; ok && o != "" {
		return o
	}
	return "open"
}
