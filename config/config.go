package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds optional file-based settings. Command line flags and
// environment variables take precedence over values set here.
type Config struct {
	OllamaURL          string `yaml:"ollama_url"`
	EmbeddingModel     string `yaml:"embedding_model"`
	GenerationModel    string `yaml:"generation_model"`
	CorpusPath         string `yaml:"corpus_path"`
	TopK               int    `yaml:"top_k"`
	WikipediaUserAgent string `yaml:"wikipedia_user_agent"`
}

// Load reads the YAML config file at path. A missing file is not an
// error: the zero Config is returned.
func Load(path string) (cfg Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
