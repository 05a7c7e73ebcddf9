package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	OrganizedFolderName string   `json:"organizedFolderName"`
	EnrichLimit         int      `json:"enrichLimit"`
	FetchTimeoutSeconds int      `json:"fetchTimeoutSeconds"`
	MaxContentLength    int      `json:"maxContentLength"`
	Profiles            []string `json:"profiles"`
	ImportFiles         []string `json:"importFiles"`
	ListenAddr          string   `json:"listenAddr"`
	AIBaseURL           string   `json:"aiBaseURL"`
	AIModel             string   `json:"aiModel"`
	TagRatePerMinute    int      `json:"tagRatePerMinute"`
	CachePath           string   `json:"cachePath"`
	StaticDir           string   `json:"staticDir"`
	InsecureTLS         bool     `json:"insecureTLS"`

	// AIAPIKey only ever comes from the environment.
	AIAPIKey string `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		OrganizedFolderName: "AI整理",
		EnrichLimit:         10,
		FetchTimeoutSeconds: 10,
		MaxContentLength:    1000,
		Profiles:            []string{"Default", "Profile 1", "Profile 2", "Profile 3"},
		ImportFiles:         []string{},
		ListenAddr:          ":5000",
		AIBaseURL:           "https://api.deepseek.com",
		AIModel:             "deepseek-chat",
		TagRatePerMinute:    60,
	}
}

// FetchTimeout returns the per-page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: defaults still apply when the file can't be written
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.OrganizedFolderName == "" {
		config.OrganizedFolderName = defaults.OrganizedFolderName
	}
	if config.EnrichLimit <= 0 {
		config.EnrichLimit = defaults.EnrichLimit
	}
	if config.FetchTimeoutSeconds <= 0 {
		config.FetchTimeoutSeconds = defaults.FetchTimeoutSeconds
	}
	if config.MaxContentLength <= 0 {
		config.MaxContentLength = defaults.MaxContentLength
	}
	if config.Profiles == nil {
		config.Profiles = defaults.Profiles
	}
	if config.ImportFiles == nil {
		config.ImportFiles = defaults.ImportFiles
	}
	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
	}
	if config.AIBaseURL == "" {
		config.AIBaseURL = defaults.AIBaseURL
	}
	if config.AIModel == "" {
		config.AIModel = defaults.AIModel
	}
	if config.TagRatePerMinute <= 0 {
		config.TagRatePerMinute = defaults.TagRatePerMinute
	}

	return &config, nil
}

// ApplyEnv overlays environment variables, loading a .env file from the
// working directory first if one exists.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	c.AIAPIKey = firstEnv("BMTAG_AI_API_KEY", "DEEPSEEK_API_KEY")
	if v := os.Getenv("BMTAG_AI_BASE_URL"); v != "" {
		c.AIBaseURL = v
	}
	if v := os.Getenv("BMTAG_AI_MODEL"); v != "" {
		c.AIModel = v
	}
	if v := os.Getenv("BMTAG_ADDR"); v != "" {
		c.ListenAddr = v
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := MarshalIndent(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmtag/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmtag", "config.json"), nil
}
