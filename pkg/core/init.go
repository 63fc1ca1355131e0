package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackcoderx/pmsync/pkg/postman"
)

// FolderName is the project folder holding config and definition.
const FolderName = ".pmsync"

// Files created inside FolderName.
const (
	ConfigFileName     = "config.json"
	DefinitionFileName = "definition.yaml"
)

// Config is the shape of the config.json written by InitializeFolder.
// The API key is left out so it can live in .env instead.
type Config struct {
	BaseURL   string  `json:"base_url"`
	Workspace string  `json:"workspace"`
	RateLimit float64 `json:"rate_limit"`
	Timeout   float64 `json:"timeout"`
	Auth      struct {
		Mode string `json:"mode"`
	} `json:"auth"`
}

// InitializeFolder creates the .pmsync folder under root with a default
// config and an example definition. Existing files are left untouched.
// It returns the paths it created.
func InitializeFolder(root string) ([]string, error) {
	dir := filepath.Join(root, FolderName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s folder: %w", FolderName, err)
	}

	var created []string

	configPath := filepath.Join(dir, ConfigFileName)
	ok, err := createIfMissing(configPath, defaultConfig)
	if err != nil {
		return created, err
	}
	if ok {
		created = append(created, configPath)
	}

	definitionPath := filepath.Join(dir, DefinitionFileName)
	ok, err = createIfMissing(definitionPath, func() ([]byte, error) { return []byte(exampleDefinition), nil })
	if err != nil {
		return created, err
	}
	if ok {
		created = append(created, definitionPath)
	}

	return created, nil
}

func createIfMissing(path string, content func() ([]byte, error)) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := content()
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func defaultConfig() ([]byte, error) {
	cfg := Config{
		BaseURL:   postman.DefaultBaseURL,
		RateLimit: 5,
	}
	cfg.Auth.Mode = AuthModeAPIKey

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append(data, '\n'), nil
}

const exampleDefinition = `# Desired remote state. Run "pmsync diff" to preview, "pmsync" to apply.
environment:
  name: Local API
  values:
    - key: baseUrl
      value: http://localhost:8080
    - key: adminUser
      value: "{{env:ADMIN_USER}}"
    - key: adminPassword
      value: "{{env:ADMIN_PASSWORD}}"
    - key: jwtToken
      value: ""
      enabled: false

collection:
  name: Local API
  description: Requests against the local API.
  items:
    - name: Auth
      items:
        - name: Login
          request:
            method: POST
            url: "{{baseUrl}}/auth/login"
            headers:
              - key: Content-Type
                value: application/json
            body:
              username: "{{adminUser}}"
              password: "{{adminPassword}}"
    - name: Health
      request:
        method: GET
        url: "{{baseUrl}}/health"
        headers:
          - key: Authorization
            value: Bearer {{jwtToken}}
`
