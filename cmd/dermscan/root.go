package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dermscan/internal/config"
	"dermscan/internal/inference"
)

const (
	defaultAddr      = ":8080"
	defaultModelsDir = "~/models/dermscan"
)

type rootOptions struct {
	configPath string
	envFile    string
}

// buildRootCmd constructs the command tree. Settings resolve in order:
// defaults, config file, DERMSCAN_* environment, explicit flags.
func buildRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "dermscan",
		Short:         "Skin-lesion risk inference service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Config file (.yaml, .json or .toml)")
	pf.StringVar(&o.envFile, "env-file", "", "Env file to load before reading DERMSCAN_* variables (default .env if present)")
	pf.String("addr", defaultAddr, "HTTP listen address, e.g. :8080")
	pf.String("model-url", "", "Model location: .onnx file, SavedModel dir, directory or http(s) URL")
	pf.String("models-dir", defaultModelsDir, "Directory to scan for model artifacts")
	pf.Bool("light-mode", false, "Skip model loading and serve the heuristic estimator")
	pf.String("device-class", "auto", "Candidate order: auto|constrained|standard")
	pf.String("user-agent", "", "Device user agent; mobile agents enable light mode")
	pf.Int("load-timeout", 30, "Per-candidate model load timeout in seconds")
	pf.String("onnx-lib", "", "Path to the onnxruntime shared library")
	pf.Int("threads", 0, "Intra-op threads for the ONNX runtime (0=library default)")
	pf.String("log-level", "info", "Log level: debug|info|warn|error")
	pf.String("log-format", "console", "Log format: console|json")
	pf.String("cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	pf.Int64("max-body-bytes", 10<<20, "Maximum request body size in bytes")
	pf.Int("predict-timeout", 0, "Per-request predict timeout in seconds (0 disables)")

	root.AddCommand(newServeCmd(o), newPredictCmd(o), newSanityCmd(o))
	return root
}

// resolveConfig layers file, environment and changed flags over defaults.
func resolveConfig(cmd *cobra.Command, o *rootOptions) (config.Config, error) {
	if err := config.LoadEnvFile(o.envFile, o.envFile == ""); err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", o.configPath, err)
		}
		cfg = c
	}
	cfg, err := config.FromEnv(cfg)
	if err != nil {
		return cfg, err
	}
	applyFlags(cmd.Flags(), &cfg)
	applyDefaults(&cfg)
	return cfg, cfg.Validate()
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if fs.Changed(name) {
			*dst, _ = fs.GetInt(name)
		}
	}
	str("addr", &cfg.Addr)
	str("model-url", &cfg.ModelURL)
	str("models-dir", &cfg.ModelsDir)
	str("device-class", &cfg.DeviceClass)
	str("user-agent", &cfg.DeviceUserAgent)
	str("onnx-lib", &cfg.ONNXLibPath)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	num("load-timeout", &cfg.LoadTimeoutSec)
	num("threads", &cfg.Threads)
	num("predict-timeout", &cfg.PredictTimeoutSec)
	if fs.Changed("light-mode") {
		cfg.LightMode, _ = fs.GetBool("light-mode")
	}
	if fs.Changed("max-body-bytes") {
		cfg.MaxBodyBytes, _ = fs.GetInt64("max-body-bytes")
	}
	if fs.Changed("cors-origins") {
		v, _ := fs.GetString("cors-origins")
		cfg.CORSOrigins = config.SplitList(v)
	}
}

func applyDefaults(cfg *config.Config) {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = defaultModelsDir
	}
	if cfg.LoadTimeoutSec == 0 {
		cfg.LoadTimeoutSec = 30
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
}

// serviceConfig maps file/env/flag settings onto the inference service.
func serviceConfig(cfg config.Config, log zerolog.Logger, pub inference.EventPublisher) inference.ServiceConfig {
	device := inference.DeviceAuto
	switch cfg.DeviceClass {
	case "constrained":
		device = inference.DeviceConstrained
	case "standard":
		device = inference.DeviceStandard
	}
	return inference.ServiceConfig{
		ModelURL:        cfg.ModelURL,
		ModelsDir:       cfg.ModelsDir,
		LightMode:       cfg.LightMode,
		DeviceUserAgent: cfg.DeviceUserAgent,
		Device:          device,
		LoadTimeout:     time.Duration(cfg.LoadTimeoutSec) * time.Second,
		ONNXLibPath:     cfg.ONNXLibPath,
		Threads:         cfg.Threads,
		Publisher:       pub,
		Logger:          &log,
	}
}
