package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "DERMSCAN_"

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error when optional is true.
func LoadEnvFile(path string, optional bool) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays DERMSCAN_* variables onto c. Set variables win over file
// values; malformed numbers and booleans are reported.
func FromEnv(c Config) (Config, error) {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	str("ADDR", &c.Addr)
	str("MODEL_URL", &c.ModelURL)
	str("MODELS_DIR", &c.ModelsDir)
	str("DEVICE_CLASS", &c.DeviceClass)
	str("DEVICE_USER_AGENT", &c.DeviceUserAgent)
	str("ONNX_LIB_PATH", &c.ONNXLibPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	num("LOAD_TIMEOUT_SEC", &c.LoadTimeoutSec)
	num("THREADS", &c.Threads)
	num("PREDICT_TIMEOUT_SEC", &c.PredictTimeoutSec)
	if v, ok := os.LookupEnv(EnvPrefix + "LIGHT_MODE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sLIGHT_MODE: %w", EnvPrefix, err))
		} else {
			c.LightMode = b
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err))
		} else {
			c.MaxBodyBytes = n
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "CORS_ORIGINS"); ok {
		c.CORSOrigins = SplitList(v)
	}
	if err := errors.Join(errs...); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
