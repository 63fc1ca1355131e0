package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/blackcoderx/pmsync/pkg/postman"
	"github.com/blackcoderx/pmsync/pkg/storage"
)

// ErrMissingAPIKey is returned when api_key auth is selected without a key.
var ErrMissingAPIKey = errors.New("missing API key: set POSTMAN_API_KEY or api_key in the config file")

// Auth modes.
const (
	AuthModeAPIKey = "api_key"
	AuthModeOAuth2 = "oauth2"
)

// Settings is the resolved configuration of one run.
type Settings struct {
	BaseURL         string
	APIKey          string
	Definition      string
	EnvironmentName string // Overrides the definition's environment name when set
	CollectionName  string // Overrides the definition's collection name when set
	Workspace       string
	RateLimit       float64       // Requests per second, 0 disables limiting
	Timeout         time.Duration // Per call, 0 means none
	Auth            AuthSettings
}

// AuthSettings selects how requests are authenticated.
type AuthSettings struct {
	Mode   string
	OAuth2 OAuth2Settings
}

// OAuth2Settings configures the client credentials flow.
type OAuth2Settings struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", postman.DefaultBaseURL)
	v.SetDefault("definition", filepath.Join(FolderName, DefinitionFileName))
	v.SetDefault("rate_limit", 5)
	v.SetDefault("timeout", 0)
	v.SetDefault("auth.mode", AuthModeAPIKey)

	_ = v.BindEnv("api_key", "POSTMAN_API_KEY")
	_ = v.BindEnv("base_url", "BASE_URL")
}

// LoadSettings reads the settings from the global viper instance.
func LoadSettings() (Settings, error) {
	return LoadSettingsFrom(viper.GetViper())
}

// LoadSettingsFrom reads and validates the settings held by v.
func LoadSettingsFrom(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		BaseURL:         strings.TrimSpace(v.GetString("base_url")),
		APIKey:          strings.TrimSpace(v.GetString("api_key")),
		Definition:      v.GetString("definition"),
		EnvironmentName: v.GetString("environment_name"),
		CollectionName:  v.GetString("collection_name"),
		Workspace:       v.GetString("workspace"),
		RateLimit:       v.GetFloat64("rate_limit"),
		Timeout:         time.Duration(v.GetFloat64("timeout") * float64(time.Second)),
		Auth: AuthSettings{
			Mode: strings.ToLower(strings.TrimSpace(v.GetString("auth.mode"))),
			OAuth2: OAuth2Settings{
				TokenURL:     v.GetString("auth.oauth2.token_url"),
				ClientID:     v.GetString("auth.oauth2.client_id"),
				ClientSecret: v.GetString("auth.oauth2.client_secret"),
				Scopes:       v.GetStringSlice("auth.oauth2.scopes"),
			},
		},
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings describe a usable client.
func (s Settings) Validate() error {
	switch s.Auth.Mode {
	case AuthModeAPIKey, "":
		if s.APIKey == "" {
			return ErrMissingAPIKey
		}
	case AuthModeOAuth2:
		o := s.Auth.OAuth2
		if o.TokenURL == "" || o.ClientID == "" || o.ClientSecret == "" {
			return fmt.Errorf("auth mode oauth2 requires auth.oauth2.token_url, client_id and client_secret")
		}
	default:
		return fmt.Errorf("unknown auth mode '%s' (supported: %s, %s)", s.Auth.Mode, AuthModeAPIKey, AuthModeOAuth2)
	}

	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", s.RateLimit)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", s.Timeout)
	}
	return nil
}

// NewClient builds the remote client described by s. In oauth2 mode the
// bearer token is fetched lazily on the first call.
func (s Settings) NewClient(ctx context.Context, logger *zap.Logger) (*postman.Client, error) {
	opts := []postman.Option{
		postman.WithAPIKey(s.APIKey),
		postman.WithWorkspace(s.Workspace),
		postman.WithRateLimit(s.RateLimit),
		postman.WithTimeout(s.Timeout),
		postman.WithLogger(logger),
	}

	if s.Auth.Mode == AuthModeOAuth2 {
		cfg := clientcredentials.Config{
			ClientID:     s.Auth.OAuth2.ClientID,
			ClientSecret: s.Auth.OAuth2.ClientSecret,
			TokenURL:     s.Auth.OAuth2.TokenURL,
			Scopes:       s.Auth.OAuth2.Scopes,
		}
		opts = append(opts, postman.WithTokenSource(cfg.TokenSource(ctx)))
	}

	return postman.New(s.BaseURL, opts...)
}

// ApplyNames replaces the asset names of def with the configured overrides.
func (s Settings) ApplyNames(def *storage.Definition) {
	if s.EnvironmentName != "" {
		def.Environment.Name = s.EnvironmentName
	}
	if s.CollectionName != "" {
		def.Collection.Name = s.CollectionName
	}
}
