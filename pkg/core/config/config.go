// Package config loads the service configuration from YAML, with defaults
// that work for a local run out of the box.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"riskdelta/pkg/core/diff"
)

// Config is the top-level service configuration.
type Config struct {
	// Listen is the API bind address.
	Listen string `yaml:"listen"`
	// Storage selects the document store backend: "file" or "postgres".
	Storage string `yaml:"storage"`
	// DataDir is the file store root (file backend only).
	DataDir string `yaml:"data_dir"`
	// OCRServiceURL points at a remote text-extraction service; empty
	// means PDFs use the local pdftotext adapter only.
	OCRServiceURL string `yaml:"ocr_service_url"`

	Gemini GeminiConfig `yaml:"gemini"`
	Diff   diff.Config  `yaml:"diff"`
}

// GeminiConfig controls the optional explanation rephraser.
type GeminiConfig struct {
	Model string `yaml:"model"`
	// Explain enables LLM rephrasing of change explanations. Requires
	// GEMINI_API_KEY in the environment.
	Explain bool `yaml:"explain"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Listen:  ":8080",
		Storage: "file",
		DataDir: "data",
		Diff:    diff.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Zeroed diff thresholds mean the section was partially filled in;
	// fall back to defaults rather than matching nothing.
	if cfg.Diff.Threshold == 0 && cfg.Diff.IdenticalThreshold == 0 {
		cfg.Diff = diff.DefaultConfig()
	}
	return cfg, nil
}
