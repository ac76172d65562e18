// Package launcher hands an entry to an installed molecular viewer, or to
// the system browser when none is available.
package launcher

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pders01/pdbscope/internal/config"
	"github.com/pders01/pdbscope/internal/debuglog"
)

type Launcher struct {
	registry *Registry
	filesURL string
	entryURL string
	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
	log      *debuglog.FieldLogger
}

func NewLauncher(cfg config.APIConfig) *Launcher {
	registry, err := NewRegistry()
	if err != nil {
		// Continue with the system opener only
		registry = &Registry{openers: map[string]string{}, viewers: map[string]ViewerDefinition{}}
	}

	return &Launcher{
		registry: registry,
		filesURL: strings.TrimRight(cfg.FilesURL, "/"),
		entryURL: strings.TrimRight(cfg.EntryURL, "/"),
		lookPath: exec.LookPath,
		start:    startDetached,
		log:      debuglog.With("component", "launcher"),
	}
}

// Result tells the caller what was started.
type Result struct {
	Program string
	Target  string
}

// Open starts the first installed viewer with entry id, falling back to the
// entry page in the system browser.
func (l *Launcher) Open(id string) (Result, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return Result{}, fmt.Errorf("no entry selected")
	}
	fileURL := fmt.Sprintf("%s/%s.pdb", l.filesURL, id)

	for _, name := range l.registry.Candidates() {
		if _, err := l.lookPath(name); err != nil {
			continue
		}
		args, err := l.registry.Args(name, id, fileURL)
		if err != nil {
			continue
		}
		if err := l.start(exec.Command(name, args...)); err != nil {
			l.log.Warnf("starting %s failed: %v", name, err)
			continue
		}
		l.log.Infof("opened %s in %s", id, name)
		return Result{Program: name, Target: id}, nil
	}

	page := fmt.Sprintf("%s/%s", l.entryURL, id)
	opener := l.registry.Opener()
	if err := l.start(openerCommand(opener, page)); err != nil {
		return Result{}, fmt.Errorf("failed to start %s: %w", opener, err)
	}
	l.log.Infof("opened %s with %s", page, opener)
	return Result{Program: opener, Target: page}, nil
}

func openerCommand(opener, target string) *exec.Cmd {
	if opener == "rundll32" {
		return exec.Command(opener, "url.dll,FileProtocolHandler", target)
	}
	return exec.Command(opener, target)
}

// startDetached starts GUI applications without waiting on them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
