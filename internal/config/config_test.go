package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftsoftwaregroup/swift-machine-client-go/oauth2client"
)

const settingsYAML = `
client_id: file-id
client_secret: file-secret
token_endpoint: https://auth.example.com/oauth2/token
api_endpoint: https://api.example.com/food
scope: identity/Food
timeout: 5s
profiles:
  food:
    scope: identity/Food
  training:
    scope: food_training/food
    api_endpoint: https://api.example.com/training
`

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_CLIENT_ID", "APP_CLIENT_SECRET", "TOKEN_ENDPOINT", "API_ENDPOINT",
		"SCOPE", "HTTP_METHOD", "HTTP_TIMEOUT", "LOG_LEVEL",
		EnvConfigFile, EnvDotEnvFile,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "POST", cfg.Method)
	assert.Equal(t, oauth2client.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ClientID)
}

func TestLoadLayering(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	path := writeFile(t, "settings.yaml", settingsYAML)

	t.Run("file only", func(t *testing.T) {
		cfg, err := Load(Options{ConfigFile: path})
		require.NoError(t, err)
		assert.Equal(t, "file-id", cfg.ClientID)
		assert.Equal(t, "file-secret", cfg.ClientSecret)
		assert.Equal(t, "identity/Food", cfg.Scope)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "POST", cfg.Method)
		assert.Equal(t, []string{"food", "training"}, cfg.ProfileNames())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("APP_CLIENT_ID", "env-id")
		t.Setenv("HTTP_TIMEOUT", "2s")
		t.Setenv("HTTP_METHOD", "get")

		cfg, err := Load(Options{ConfigFile: path})
		require.NoError(t, err)
		assert.Equal(t, "env-id", cfg.ClientID)
		assert.Equal(t, "file-secret", cfg.ClientSecret)
		assert.Equal(t, 2*time.Second, cfg.Timeout)

		cc, err := cfg.ClientConfig()
		require.NoError(t, err)
		assert.Equal(t, oauth2client.HttpGet, cc.Method)
	})

	t.Run("config file from environment", func(t *testing.T) {
		t.Setenv(EnvConfigFile, path)

		cfg, err := Load(Options{})
		require.NoError(t, err)
		assert.Equal(t, "file-id", cfg.ClientID)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("malformed config file", func(t *testing.T) {
		bad := writeFile(t, "bad.yaml", "client_id: [unterminated")
		_, err := Load(Options{ConfigFile: bad})
		assert.ErrorContains(t, err, "failed to parse config file")
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"APP_CLIENT_ID=abc\nAPP_CLIENT_SECRET=def\nTOKEN_ENDPOINT=https://auth.example.com/oauth2/token\nAPI_ENDPOINT=https://api.example.com/food\n",
	), 0o600))

	t.Run("implicit .env", func(t *testing.T) {
		t.Setenv("APP_CLIENT_SECRET", "from-process")

		cfg, err := Load(Options{})
		require.NoError(t, err)
		assert.Equal(t, "abc", cfg.ClientID)
		assert.Equal(t, "from-process", cfg.ClientSecret, "process environment wins over .env")
		assert.Equal(t, "https://api.example.com/food", cfg.APIEndpoint)
	})

	t.Run("explicit env file must exist", func(t *testing.T) {
		_, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
		assert.ErrorContains(t, err, "failed to load env file")
	})
}

func TestUseProfile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	cfg, err := Load(Options{ConfigFile: writeFile(t, "settings.yaml", settingsYAML)})
	require.NoError(t, err)

	require.NoError(t, cfg.UseProfile("training"))
	assert.Equal(t, "food_training/food", cfg.Scope)
	assert.Equal(t, "https://api.example.com/training", cfg.APIEndpoint)

	require.NoError(t, cfg.UseProfile("food"))
	assert.Equal(t, "identity/Food", cfg.Scope)
	assert.Equal(t, "https://api.example.com/training", cfg.APIEndpoint, "profile without endpoint keeps the current one")

	assert.EqualError(t, cfg.UseProfile("billing"), `unknown profile "billing" (known: food, training)`)
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.ClientID = "abc"
	cfg.ClientSecret = "def"
	cfg.TokenEndpoint = "https://auth.example.com/oauth2/token"
	cfg.APIEndpoint = "https://api.example.com/food"
	cfg.Scope = "identity/Food"

	cc, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, oauth2client.Config{
		Credentials: oauth2client.Credentials{ClientID: "abc", ClientSecret: "def"},
		Endpoints: oauth2client.Endpoints{
			TokenURL: "https://auth.example.com/oauth2/token",
			APIURL:   "https://api.example.com/food",
		},
		Scope:   "identity/Food",
		Method:  oauth2client.HttpPost,
		Timeout: oauth2client.DefaultTimeout,
	}, cc)

	cfg.ClientSecret = ""
	_, err = cfg.ClientConfig()
	assert.EqualError(t, err, "client secret is required")

	cfg.Method = "FETCH"
	_, err = cfg.ClientConfig()
	assert.EqualError(t, err, `unsupported http method "FETCH"`)
}

func TestInitLogger(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prevLevel)
	prev := log.Logger
	defer func() { log.Logger = prev }()

	var buf bytes.Buffer
	require.NoError(t, InitLogger(&buf, "WARN"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("hidden")
	log.Warn().Str("client_id", "abc").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "client_id=abc")

	assert.Error(t, InitLogger(&buf, "loud"))
}
