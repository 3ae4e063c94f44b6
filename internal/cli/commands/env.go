package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/client"
	"github.com/cropwise-dev/cropwise/internal/cli/config"
	"github.com/cropwise-dev/cropwise/internal/cli/guard"
	"github.com/cropwise-dev/cropwise/internal/cli/prompt"
	"github.com/cropwise-dev/cropwise/internal/cli/session"
)

const sessionFileName = "session.json"

// ErrRedirected stops a command whose page the guard turned away
var ErrRedirected = errors.New("redirected")

// Env carries the dependencies shared by every command
type Env struct {
	Config   *config.Config
	Store    session.Store
	Client   *client.Client
	Guard    *guard.Guard
	Prompter prompt.Prompter
	Logger   zerolog.Logger
	Out      io.Writer
	Err      io.Writer

	// Sleep waits before a guard redirect so the notice can be read
	Sleep func(time.Duration)
}

// Ready reports whether the environment has been set up
func (e *Env) Ready() bool {
	return e.Client != nil
}

// Setup wires the environment from the user's config file
func (e *Env) Setup(logger zerolog.Logger) error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := defaultStore(cfg.APIURL)
	if err != nil {
		return err
	}

	e.Config = cfg
	e.Store = store
	e.Logger = logger
	e.Guard = guard.New(cfg.Guard)
	e.Client = client.New(cfg.APIURL, store,
		client.WithLogger(logger),
		client.WithTimeout(cfg.Timeout),
		client.WithSignInPage(e.Guard.Config().SignInPage),
	)
	if e.Prompter == nil {
		e.Prompter = prompt.NewTerminal()
	}
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Err == nil {
		e.Err = os.Stderr
	}
	if e.Sleep == nil {
		e.Sleep = time.Sleep
	}
	return nil
}

// defaultStore prefers the OS keychain and falls back to a private file
func defaultStore(apiURL string) (session.Store, error) {
	if session.KeyringAvailable() {
		return session.NewKeyringStore(apiURL), nil
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return session.NewFileStore(filepath.Join(dir, sessionFileName)), nil
}

// PageID returns the guard page identifier of cmd: its command path
// without the binary name
func PageID(cmd *cobra.Command) string {
	path := cmd.CommandPath()
	root := cmd.Root().Name()
	return strings.TrimSpace(strings.TrimPrefix(path, root))
}

// CheckAccess runs the route guard for cmd. When the page is turned away it
// shows the notice, waits, opens the target page if the terminal is
// interactive and returns ErrRedirected so the requested page never runs.
func (e *Env) CheckAccess(cmd *cobra.Command) error {
	page := PageID(cmd)
	decision := e.Guard.Check(page, e.Store)
	e.Logger.Debug().Str("page", page).Stringer("decision", decision).Msg("Route guard")
	if decision.Allow {
		return nil
	}

	fmt.Fprintln(e.Err, decision.Notice)
	e.Sleep(decision.Delay)

	if e.Prompter.Interactive() {
		if err := runPage(cmd, decision.Target); err != nil {
			return err
		}
	}
	return ErrRedirected
}

// runPage runs another page's command with its default flags
func runPage(from *cobra.Command, page string) error {
	target, _, err := from.Root().Find(strings.Fields(page))
	if err != nil || target == from.Root() || target.RunE == nil {
		return fmt.Errorf("unknown page %q", page)
	}
	target.SetContext(from.Context())
	return target.RunE(target, nil)
}

// firstNonEmpty returns the first non-blank value
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
