package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration for the segmenter
// harness, adapted from the teacher's server/database/torrent/TMDB
// sections into server/segmenter/metrics sections for this domain.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// SegmenterConfig mirrors the Session construction options of spec.md §6.
type SegmenterConfig struct {
	HLSBase        string `yaml:"hls_base"`
	HLSListSize    int    `yaml:"hls_list_size"`
	BufferListSize *int   `yaml:"buffer_list_size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: 8080,
		},
		Segmenter: SegmenterConfig{
			HLSBase:     "stream",
			HLSListSize: 4,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
