package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(APIURLEnv, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "login", cfg.Guard.SignInPage)
	assert.Contains(t, cfg.Guard.Protected, "predict")
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(APIURLEnv, "")

	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `api_url: https://crops.example.com
guard:
  protected: [predict, history]
  notice_delay: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://crops.example.com", cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, []string{"predict", "history"}, cfg.Guard.Protected)
	assert.Equal(t, 250*time.Millisecond, cfg.Guard.NoticeDelay)
	assert.Equal(t, []string{"admin"}, cfg.Guard.AdminOnly)
}

func TestLoad_EnvOverridesAPIURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://from-file:5000\n"), 0644))
	t.Setenv(APIURLEnv, "http://from-env:8080")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8080", cfg.APIURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unterminated\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv(APIURLEnv, "")

	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	cfg := DefaultConfig()
	cfg.APIURL = "http://10.0.0.5:5000"
	cfg.Timeout = 5 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
