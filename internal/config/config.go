package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the flat hearth configuration
type Config struct {
	Version       string              `json:"version"`
	Author        string              `json:"author,omitempty"`         // attribution for records written to the store
	HomeAssistant HomeAssistantConfig `json:"homeassistant,omitempty"`  // state source + connector
	Vision        VisionConfig        `json:"vision,omitempty"`         // detection backend endpoints
	Notifications NotificationConfig  `json:"notifications,omitempty"`  // OS-level notification permission
}

// HomeAssistantConfig holds the Home Assistant endpoint and token.
type HomeAssistantConfig struct {
	BaseURL string `json:"base_url,omitempty"`
	Token   string `json:"token,omitempty"`
}

// VisionConfig holds one endpoint per detection backend. Empty entries
// leave that backend unconfigured.
type VisionConfig struct {
	LocalPath     string `json:"local_path,omitempty"`     // detections file for the local backend
	Frigate       string `json:"frigate,omitempty"`        // base URL
	CodeProjectAI string `json:"codeprojectai,omitempty"`  // base URL
	YOLO          string `json:"yolo,omitempty"`           // base URL
}

// NotificationConfig controls OS-level notifications.
type NotificationConfig struct {
	Enabled bool `json:"enabled"`
}

// LoadConfig reads .hearth/config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".hearth", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	hearthDir := filepath.Join(dir, ".hearth")
	if err := os.MkdirAll(hearthDir, 0755); err != nil {
		return fmt.Errorf("failed to create .hearth dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(hearthDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadDefault reads the config from the user's home directory, returning
// an empty config when none exists yet.
func LoadDefault() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Config{}
	}
	cfg, err := LoadConfig(home)
	if err != nil {
		return &Config{}
	}
	return cfg
}
