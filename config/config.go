// Package config loads the estimator's settings from env files, an optional
// YAML file and the process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AppName     = "produce-shelf-life"
	EnvFileName = "config.env"
)

// Predictor backends.
const (
	PredictorGemini   = "gemini"
	PredictorEndpoint = "endpoint"
)

// CacheOff disables the annotation cache when used as VisionCachePath.
const CacheOff = "off"

// Config holds every runtime setting. Zero values are filled by Load.
type Config struct {
	Predictor string `yaml:"predictor"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	VertexProject     string `yaml:"vertex_project"`
	VertexLocation    string `yaml:"vertex_location"`
	VertexEndpointID  string `yaml:"vertex_endpoint_id"`
	VertexAccessToken string `yaml:"vertex_access_token"`
	VertexBaseURL     string `yaml:"vertex_base_url"`

	ListenAddr       string        `yaml:"listen_addr"`
	VisionCachePath  string        `yaml:"vision_cache_path"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	InferenceTimeout time.Duration `yaml:"inference_timeout"`
	MaxUploadMB      int64         `yaml:"max_upload_mb"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory and from ./.env. Errors are ignored since the files may not
// exist. Variables already set in the environment win.
func LoadEnvFile() {
	if configBase, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
	}
	_ = godotenv.Load()
}

// Load reads the YAML file named by PRODUCE_CONFIG, if any, then applies
// environment overrides and defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("PRODUCE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Predictor, "PREDICTOR")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiModel, "GEMINI_MODEL")
	setString(&c.VertexProject, "VERTEX_PROJECT")
	setString(&c.VertexLocation, "VERTEX_LOCATION")
	setString(&c.VertexEndpointID, "VERTEX_ENDPOINT_ID")
	setString(&c.VertexAccessToken, "VERTEX_ACCESS_TOKEN")
	setString(&c.VertexBaseURL, "VERTEX_BASE_URL")
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.VisionCachePath, "VISION_CACHE_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	for key, dst := range map[string]*time.Duration{
		"SESSION_TTL":       &c.SessionTTL,
		"INFERENCE_TIMEOUT": &c.InferenceTimeout,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s must be a duration: %w", key, err)
		}
		*dst = d
	}

	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", v)
		}
		c.MaxUploadMB = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Predictor == "" {
		c.Predictor = PredictorGemini
	}
	if c.VertexLocation == "" {
		c.VertexLocation = "us-central1"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8501"
	}
	if c.VisionCachePath == "" {
		c.VisionCachePath = ":memory:"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 12 * time.Hour
	}
	if c.InferenceTimeout == 0 {
		c.InferenceTimeout = 60 * time.Second
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 10
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// Validate returns the names of required settings that are missing for the
// selected predictor.
func (c *Config) Validate() []string {
	var missing []string
	require := func(value, key string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	switch c.Predictor {
	case PredictorGemini:
		require(c.GeminiAPIKey, "GEMINI_API_KEY")
	case PredictorEndpoint:
		require(c.VertexProject, "VERTEX_PROJECT")
		require(c.VertexEndpointID, "VERTEX_ENDPOINT_ID")
		require(c.VertexAccessToken, "VERTEX_ACCESS_TOKEN")
	default:
		missing = append(missing, fmt.Sprintf("PREDICTOR (unknown value %q)", c.Predictor))
	}
	return missing
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
