package httpapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loadable from a YAML file. Absent
// fields keep their defaults.
type Config struct {
	// Listen is the address passed to the HTTP server. Default ":3000".
	Listen string `yaml:"listen"`
	// UploadField names the multipart form field carrying the CSV document.
	// Default "file".
	UploadField string `yaml:"upload_field"`
	// MaxBodyBytes caps the request body when positive. Zero means no cap;
	// the pipeline itself never needs more than one row in memory.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// Compression enables Accept-Encoding negotiation (gzip, zstd).
	Compression bool `yaml:"compression"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Listen:      ":3000",
		UploadField: "file",
		Compression: true,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":3000"
	}
	if cfg.UploadField == "" {
		cfg.UploadField = "file"
	}
	return cfg, nil
}
