// Package guard decides whether a command may run for the current session
package guard

import (
	"fmt"
	"strings"
	"time"

	"github.com/cropwise-dev/cropwise/internal/cli/session"
)

// Config classifies pages. A page is a command path without the binary
// name, e.g. "predict" or "admin users".
type Config struct {
	Protected   []string      `yaml:"protected"`
	AdminOnly   []string      `yaml:"admin_only"`
	SignInPage  string        `yaml:"sign_in"`
	LandingPage string        `yaml:"landing"`
	NoticeDelay time.Duration `yaml:"notice_delay"`
}

// DefaultConfig returns the built-in page classification
func DefaultConfig() Config {
	return Config{
		Protected:   []string{"dashboard", "predict", "history", "profile", "change-password", "logout"},
		AdminOnly:   []string{"admin"},
		SignInPage:  "login",
		LandingPage: "dashboard",
		NoticeDelay: 700 * time.Millisecond,
	}
}

// withDefaults fills fields left empty by a partial config file
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Protected == nil {
		c.Protected = def.Protected
	}
	if c.AdminOnly == nil {
		c.AdminOnly = def.AdminOnly
	}
	if c.SignInPage == "" {
		c.SignInPage = def.SignInPage
	}
	if c.LandingPage == "" {
		c.LandingPage = def.LandingPage
	}
	if c.NoticeDelay <= 0 {
		c.NoticeDelay = def.NoticeDelay
	}
	return c
}

// Decision is the outcome of a guard check
type Decision struct {
	Allow bool

	// Set when Allow is false
	Target string
	Notice string
	Delay  time.Duration
}

// Allowed is the decision for pages the session may see
var Allowed = Decision{Allow: true}

// Redirect builds a non-allowing decision
func Redirect(target, notice string, delay time.Duration) Decision {
	return Decision{Target: target, Notice: notice, Delay: delay}
}

func (d Decision) String() string {
	if d.Allow {
		return "allow"
	}
	return fmt.Sprintf("redirect to %s", d.Target)
}

// Guard checks pages against a Config
type Guard struct {
	cfg Config
}

// New creates a guard, applying defaults for anything cfg leaves empty
func New(cfg Config) *Guard {
	return &Guard{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration
func (g *Guard) Config() Config {
	return g.cfg
}

// Check decides whether page may be shown for the session in store.
// Admin-only pages are implicitly protected.
func (g *Guard) Check(page string, store session.Store) Decision {
	page = normalize(page)

	adminOnly := matches(g.cfg.AdminOnly, page)
	if !adminOnly && !matches(g.cfg.Protected, page) {
		return Allowed
	}

	// The sign-in page itself is never gated
	if page == normalize(g.cfg.SignInPage) {
		return Allowed
	}

	if !store.IsActive() {
		return Redirect(g.cfg.SignInPage,
			fmt.Sprintf("Please sign in to continue. Run 'cropwise %s'.", g.cfg.SignInPage),
			g.cfg.NoticeDelay)
	}

	if adminOnly {
		if _, ok := store.Get(session.FieldIsAdmin); !ok {
			return Redirect(g.cfg.LandingPage,
				"This page is for administrators only.",
				g.cfg.NoticeDelay)
		}
	}

	return Allowed
}

// matches reports whether page equals an entry or sits below it
func matches(entries []string, page string) bool {
	for _, e := range entries {
		e = normalize(e)
		if e == "" {
			continue
		}
		if page == e || strings.HasPrefix(page, e+" ") {
			return true
		}
	}
	return false
}

func normalize(page string) string {
	return strings.Join(strings.Fields(page), " ")
}
