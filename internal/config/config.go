package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// StoreConfig configures where the vector index is persisted.
type StoreConfig struct {
	PersistDir string `yaml:"persist_dir"`
}

// RetrievalConfig configures query behavior.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// DataConfig points at the tabular campaigns source and the knowledge docs.
type DataConfig struct {
	CampaignsCSV string `yaml:"campaigns_csv"`
	DocsGlob     string `yaml:"docs_glob"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Store     StoreConfig     `yaml:"store"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Data      DataConfig      `yaml:"data"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/adsight/config.yaml.
// If neither exists, it writes defaults to ~/.config/adsight/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "adsight", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder:  EmbedderConfig{Type: "tfidf"},
		Chunker:   ChunkerConfig{MaxChunkSize: 500, ChunkOverlap: 50},
		Store:     StoreConfig{PersistDir: filepath.Join(".adsight", "index")},
		Retrieval: RetrievalConfig{TopK: 4},
		Data:      DataConfig{CampaignsCSV: filepath.Join("data", "campaigns.csv")},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = 500
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = 50
	}
	if cfg.Store.PersistDir == "" {
		cfg.Store.PersistDir = filepath.Join(".adsight", "index")
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Data.CampaignsCSV == "" {
		cfg.Data.CampaignsCSV = filepath.Join("data", "campaigns.csv")
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Chunker.ChunkOverlap >= cfg.Chunker.MaxChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than max_chunk_size (%d)",
			cfg.Chunker.ChunkOverlap, cfg.Chunker.MaxChunkSize)
	}
	return nil
}
