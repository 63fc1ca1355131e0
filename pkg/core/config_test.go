package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blackcoderx/pmsync/pkg/storage"
)

func TestLoadSettingsFrom_Defaults(t *testing.T) {
	t.Setenv("POSTMAN_API_KEY", "PMAK-env")
	t.Setenv("BASE_URL", "")

	s, err := LoadSettingsFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://api.getpostman.com", s.BaseURL)
	assert.Equal(t, "PMAK-env", s.APIKey)
	assert.Equal(t, filepath.Join(".pmsync", "definition.yaml"), s.Definition)
	assert.Equal(t, float64(5), s.RateLimit)
	assert.Zero(t, s.Timeout)
	assert.Equal(t, AuthModeAPIKey, s.Auth.Mode)
}

func TestLoadSettingsFrom_ConfigFile(t *testing.T) {
	t.Setenv("POSTMAN_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"base_url": "http://localhost:9000",
		"api_key": "PMAK-file",
		"environment_name": "Override Env",
		"workspace": "ws-1",
		"rate_limit": 0,
		"timeout": 2.5
	}`), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := LoadSettingsFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", s.BaseURL)
	assert.Equal(t, "PMAK-file", s.APIKey)
	assert.Equal(t, "Override Env", s.EnvironmentName)
	assert.Equal(t, "ws-1", s.Workspace)
	assert.Zero(t, s.RateLimit)
	assert.Equal(t, 2500*time.Millisecond, s.Timeout)
}

func TestLoadSettingsFrom_Errors(t *testing.T) {
	t.Setenv("POSTMAN_API_KEY", "")

	tests := []struct {
		name   string
		values map[string]any
		want   string
	}{
		{"missing key", nil, "missing API key"},
		{"unknown mode", map[string]any{"api_key": "k", "auth.mode": "basic"}, "unknown auth mode 'basic'"},
		{"incomplete oauth2", map[string]any{"auth.mode": "oauth2", "auth.oauth2.client_id": "id"}, "requires auth.oauth2.token_url"},
		{"negative rate", map[string]any{"api_key": "k", "rate_limit": -1}, "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			_, err := LoadSettingsFrom(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadSettingsFrom(viper.New())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSettings_NewClientOAuth2(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-cc", "token_type": "Bearer", "expires_in": 3600})
	}))
	defer tokenSrv.Close()

	var auth string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"environments":[]}`))
	}))
	defer apiSrv.Close()

	s := Settings{
		BaseURL: apiSrv.URL,
		Auth: AuthSettings{Mode: AuthModeOAuth2, OAuth2: OAuth2Settings{
			TokenURL: tokenSrv.URL, ClientID: "id", ClientSecret: "secret",
		}},
	}
	require.NoError(t, s.Validate())

	client, err := s.NewClient(context.Background(), zap.NewNop())
	require.NoError(t, err)
	_, err = client.Environments().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-cc", auth)
}

func TestSettings_ApplyNames(t *testing.T) {
	def := &storage.Definition{
		Environment: storage.Environment{Name: "E"},
		Collection:  storage.Collection{Name: "C"},
	}

	Settings{}.ApplyNames(def)
	assert.Equal(t, "E", def.Environment.Name)

	Settings{CollectionName: "Other"}.ApplyNames(def)
	assert.Equal(t, "E", def.Environment.Name)
	assert.Equal(t, "Other", def.Collection.Name)
}

func TestInitializeFolder(t *testing.T) {
	root := t.TempDir()

	created, err := InitializeFolder(root)
	require.NoError(t, err)
	require.Len(t, created, 2)

	data, err := os.ReadFile(filepath.Join(root, ".pmsync", "config.json"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"base_url": "https://api.getpostman.com"`))
	assert.NotContains(t, string(data), "api_key")

	def, err := storage.LoadDefinition(filepath.Join(root, ".pmsync", "definition.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Local API", def.Collection.Name)
	assert.Equal(t, 2, storage.CountRequests(def.Collection.Items))
	assert.Empty(t, storage.MissingVariables(def))

	// Second run keeps user edits.
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pmsync", "config.json"), []byte("{}"), 0644))
	created, err = InitializeFolder(root)
	require.NoError(t, err)
	assert.Empty(t, created)
	data, err = os.ReadFile(filepath.Join(root, ".pmsync", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
