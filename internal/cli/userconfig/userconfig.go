package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cropwise-dev/cropwise/internal/cli/soil"
)

const (
	configDirName  = "cropwise"
	configFileName = "state.json"

	// MaxHistory is how many local predictions are kept
	MaxHistory = 10
)

// HistoryEntry is one prediction remembered on this machine
type HistoryEntry struct {
	Time            time.Time         `json:"time"`
	Input           soil.Input        `json:"input"`
	RecommendedCrop string            `json:"recommended_crop"`
	BestModel       string            `json:"best_model"`
	Predictions     map[string]string `json:"predictions,omitempty"`
}

// UserConfig represents the user's local state stored in ~/.config/cropwise/state.json
type UserConfig struct {
	LastEmail string         `json:"last_email,omitempty"`
	History   []HistoryEntry `json:"history,omitempty"`
}

// GetConfigPath returns the path to the user state file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user state file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If state doesn't exist, return empty state
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user state file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user state file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user state to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user state: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user state file: %w", err)
	}

	return nil
}

// SetLastEmail remembers the email used for the last sign-in
func SetLastEmail(email string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.LastEmail = email
	return Save(cfg)
}

// GetLastEmail returns the remembered email, or empty string if not set
func GetLastEmail() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.LastEmail, nil
}

// AddHistory records a prediction, keeping only the newest MaxHistory entries
func AddHistory(entry HistoryEntry) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}

	cfg.History = append([]HistoryEntry{entry}, cfg.History...)
	if len(cfg.History) > MaxHistory {
		cfg.History = cfg.History[:MaxHistory]
	}
	return Save(cfg)
}

// GetHistory returns local predictions, newest first
func GetHistory() ([]HistoryEntry, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	return cfg.History, nil
}
