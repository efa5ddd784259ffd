package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir   string `yaml:"-"`
	StateDir  string `yaml:"-"`
	DBPath    string `yaml:"-"`
	NotesDir  string `yaml:"-"`
	LogPath   string `yaml:"-"`
	PrefsPath string `yaml:"-"`

	LogLevel string `yaml:"log_level" env:"KEYCYCLE_LOG_LEVEL"`
	Selector string `yaml:"selector" env:"KEYCYCLE_SELECTOR"`
	Theme    string `yaml:"theme" env:"KEYCYCLE_THEME"`
}

// New derives every path from dataDir, then overlays .keycycle/config.yaml
// when present and KEYCYCLE_* environment variables last.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	stateDir := filepath.Join(dataDir, ".keycycle")
	cfg := Config{
		DataDir:   dataDir,
		StateDir:  stateDir,
		DBPath:    filepath.Join(stateDir, "keycycle.db"),
		NotesDir:  filepath.Join(dataDir, "receipts"),
		LogPath:   filepath.Join(stateDir, "keycycle.log"),
		PrefsPath: filepath.Join(stateDir, "preferences.json"),
		LogLevel:  "info",
		Selector:  "uniform",
	}
	if err := loadFromFile(filepath.Join(stateDir, "config.yaml"), &cfg); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
