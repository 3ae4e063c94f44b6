package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropwise-dev/cropwise/internal/cli/client"
	"github.com/cropwise-dev/cropwise/internal/cli/config"
	"github.com/cropwise-dev/cropwise/internal/cli/guard"
	"github.com/cropwise-dev/cropwise/internal/cli/prompt"
	"github.com/cropwise-dev/cropwise/internal/cli/session"
	"github.com/cropwise-dev/cropwise/internal/cli/userconfig"
)

// scriptedPrompter answers prompts from canned values
type scriptedPrompter struct {
	interactive bool
	inputs      []string
	passwords   []string
	selects     []int
	labels      []string
}

func (p *scriptedPrompter) Interactive() bool { return p.interactive }

func (p *scriptedPrompter) Input(label, defaultValue string, validate func(string) error) (string, error) {
	p.labels = append(p.labels, label)
	if !p.interactive || len(p.inputs) == 0 {
		return "", prompt.ErrNotInteractive
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	if v == "" {
		v = defaultValue
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

func (p *scriptedPrompter) Password(label string) (string, error) {
	p.labels = append(p.labels, label)
	if !p.interactive || len(p.passwords) == 0 {
		return "", prompt.ErrNotInteractive
	}
	v := p.passwords[0]
	p.passwords = p.passwords[1:]
	return v, nil
}

func (p *scriptedPrompter) Confirm(label string) (bool, error) {
	return p.interactive, nil
}

func (p *scriptedPrompter) Select(label string, items []string) (int, error) {
	p.labels = append(p.labels, label)
	if !p.interactive || len(p.selects) == 0 {
		return -1, prompt.ErrNotInteractive
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	return v, nil
}

// testEnv bundles an Env with its captured output
type testEnv struct {
	*Env
	out    *bytes.Buffer
	errOut *bytes.Buffer
	store  *session.MemoryStore
	prompt *scriptedPrompter
	slept  []time.Duration
}

func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(emailEnv, "")
	t.Setenv(passwordEnv, "")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	te := &testEnv{
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		store:  store,
		prompt: &scriptedPrompter{},
	}
	g := guard.New(guard.DefaultConfig())
	te.Env = &Env{
		Config:   config.DefaultConfig(),
		Store:    store,
		Client:   client.New(server.URL, store),
		Guard:    g,
		Prompter: te.prompt,
		Logger:   zerolog.Nop(),
		Out:      te.out,
		Err:      te.errOut,
	}
	te.Sleep = func(d time.Duration) { te.slept = append(te.slept, d) }
	return te
}

func run(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func signIn(t *testing.T, te *testEnv, isAdmin bool) {
	t.Helper()
	require.NoError(t, te.store.Save(session.Session{
		AccessToken:  "a1",
		RefreshToken: "r1",
		UserID:       "42",
		UserEmail:    "e@x.com",
		FullName:     "Jo",
		IsAdmin:      isAdmin,
	}))
}

func loginHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req client.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Email != "e@x.com" || req.Password != "Secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":       "Login successful",
			"access_token":  "a1",
			"refresh_token": "r1",
			"user":          map[string]any{"id": "42", "email": req.Email, "full_name": "Jo", "is_admin": true},
		})
	})
	return mux
}

func TestLoginCommand_Structure(t *testing.T) {
	cmd := NewLoginCmd(&Env{})

	assert.Equal(t, "login", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("email"))
	assert.NotNil(t, cmd.Flags().Lookup("password"))
}

func TestLoginCommand_SuccessfulLogin(t *testing.T) {
	te := newTestEnv(t, loginHandler(t))

	err := run(t, NewLoginCmd(te.Env), "--email", "e@x.com", "--password", "Secret123")
	require.NoError(t, err)

	assert.Contains(t, te.out.String(), "✓ Login successful!")
	assert.Contains(t, te.out.String(), "User: Jo (e@x.com)")
	assert.Contains(t, te.out.String(), "Role: Admin")

	assert.True(t, te.store.IsActive())
	userID, _ := te.store.Get(session.FieldUserID)
	assert.Equal(t, "42", userID)

	lastEmail, err := userconfig.GetLastEmail()
	require.NoError(t, err)
	assert.Equal(t, "e@x.com", lastEmail)
}

func TestLoginCommand_EnvVarCredentials(t *testing.T) {
	te := newTestEnv(t, loginHandler(t))
	t.Setenv(emailEnv, "e@x.com")
	t.Setenv(passwordEnv, "Secret123")

	require.NoError(t, run(t, NewLoginCmd(te.Env)))
	assert.True(t, te.store.IsActive())
}

func TestLoginCommand_PromptsWithLastEmail(t *testing.T) {
	te := newTestEnv(t, loginHandler(t))
	require.NoError(t, userconfig.SetLastEmail("e@x.com"))

	te.prompt.interactive = true
	te.prompt.inputs = []string{""} // accept the default
	te.prompt.passwords = []string{"Secret123"}

	require.NoError(t, run(t, NewLoginCmd(te.Env)))
	assert.Equal(t, []string{"Email", "Password"}, te.prompt.labels)
	assert.True(t, te.store.IsActive())
}

func TestLoginCommand_MissingEmail(t *testing.T) {
	te := newTestEnv(t, loginHandler(t))

	err := run(t, NewLoginCmd(te.Env), "--password", "Secret123")
	assert.EqualError(t, err, "email is required (use --email flag or CROPWISE_EMAIL env var)")
}

func TestLoginCommand_MissingPasswordNonInteractive(t *testing.T) {
	te := newTestEnv(t, loginHandler(t))

	err := run(t, NewLoginCmd(te.Env), "--email", "e@x.com")
	assert.EqualError(t, err, "password is required in non-interactive mode (use --password flag or CROPWISE_PASSWORD env var)")
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	te := newTestEnv(t, loginHandler(t))

	err := run(t, NewLoginCmd(te.Env), "--email", "e@x.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", client.UserMessage(err))
	assert.False(t, te.store.IsActive())
}
