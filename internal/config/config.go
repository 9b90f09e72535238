// Package config loads the optional .wiredoc.yaml project file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/wiredoc/internal/logging"
)

// FileName is the project file looked up by Load.
const FileName = ".wiredoc.yaml"

// Config holds project defaults. Command-line flags override every field.
type Config struct {
	OutputDir          string         `yaml:"output_dir"`
	ImageDirs          []string       `yaml:"image_dirs"`
	Strict             bool           `yaml:"strict"`
	AllowMissingImages bool           `yaml:"allow_missing_images"`
	Log                logging.Config `yaml:"log"`
}

// Load reads .wiredoc.yaml from dir.
// Returns nil (not an error) if the file does not exist.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return cfg, err
}

// LoadFile reads the config at path. Relative image dirs are taken from the
// directory holding the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, d := range c.ImageDirs {
		if !filepath.IsAbs(d) {
			c.ImageDirs[i] = filepath.Join(base, d)
		}
	}
	if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(base, c.OutputDir)
	}
	return &c, nil
}
