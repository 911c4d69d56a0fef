package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by defaults in main.
type Config struct {
	Addr              string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelURL          string   `json:"model_url" yaml:"model_url" toml:"model_url"`
	ModelsDir         string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	LightMode         bool     `json:"light_mode" yaml:"light_mode" toml:"light_mode"`
	DeviceClass       string   `json:"device_class" yaml:"device_class" toml:"device_class"`
	DeviceUserAgent   string   `json:"device_user_agent" yaml:"device_user_agent" toml:"device_user_agent"`
	LoadTimeoutSec    int      `json:"load_timeout_sec" yaml:"load_timeout_sec" toml:"load_timeout_sec"`
	ONNXLibPath       string   `json:"onnx_lib_path" yaml:"onnx_lib_path" toml:"onnx_lib_path"`
	Threads           int      `json:"threads" yaml:"threads" toml:"threads"`
	LogLevel          string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat         string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSOrigins       []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxBodyBytes      int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	PredictTimeoutSec int      `json:"predict_timeout_sec" yaml:"predict_timeout_sec" toml:"predict_timeout_sec"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values that cannot be corrected by defaults.
func (c Config) Validate() error {
	switch c.DeviceClass {
	case "", "auto", "constrained", "standard":
	default:
		return fmt.Errorf("device_class must be auto, constrained or standard, got %q", c.DeviceClass)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	if c.LoadTimeoutSec < 0 || c.Threads < 0 || c.MaxBodyBytes < 0 || c.PredictTimeoutSec < 0 {
		return fmt.Errorf("numeric settings must not be negative")
	}
	return nil
}
