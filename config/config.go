package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultModel          = "ministral-8b-2512"
	DefaultTemperature    = 0.2
	DefaultBaseURL        = "https://api.mistral.ai/v1"
	DefaultThrottleDelay  = 10 * time.Second
	DefaultSecretsPath    = ".streamlit/secrets.toml"
	DefaultCacheDSN       = "file:ytnotes?mode=memory&cache=shared"
	apiKeyEnv             = "MISTRAL_API_KEY"
	ThrottleFixed         = "fixed"
	ThrottleToken         = "token"
	ThrottleNone          = "none"
	ProviderInnertube     = "innertube"
	defaultLanguage       = "en"
	defaultRequestTimeout = 5 * time.Minute
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Logging
	LogDir    string `json:"log_dir"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	Middleware MiddlewareConfig `json:"middleware"`
	CORS       CORSConfig       `json:"cors"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`

	LLM        LLMConfig        `json:"llm"`
	Transcript TranscriptConfig `json:"transcript"`
	Cache      CacheConfig      `json:"cache"`
	Storage    StorageConfig    `json:"storage"`

	Version string `json:"version"`

	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableTimeout   bool `json:"enable_timeout"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

// LLMConfig holds everything the model client needs. APIKey is resolved
// once at load time and never read from the environment again. Model and
// Temperature are fixed and not configurable through the environment.
type LLMConfig struct {
	APIKey            string  `json:"-"`
	BaseURL           string  `json:"base_url"`
	Model             string  `json:"model"`
	Temperature       float32 `json:"temperature"`
	NotesTemplatePath string  `json:"notes_template_path"`
	SecretsPath       string  `json:"secrets_path"`
}

type TranscriptConfig struct {
	Provider        string        `json:"provider"`
	DefaultLanguage string        `json:"default_language"`
	Throttle        string        `json:"throttle"`
	ThrottleDelay   time.Duration `json:"throttle_delay"`
	FetchTimeout    time.Duration `json:"fetch_timeout"`
}

type CacheConfig struct {
	Enabled bool          `json:"enabled"`
	DSN     string        `json:"dsn"`
	TTL     time.Duration `json:"ttl"`
}

// StorageConfig points at an S3-compatible bucket (DigitalOcean Spaces,
// MinIO, S3) that reports can be exported to on request.
type StorageConfig struct {
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
}

// Enabled reports whether an export bucket is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

func defaultDevConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   false,
		EnableCORS:      true,
		EnableRateLimit: false,
	}
}

func defaultProdConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   true,
		EnableCORS:      true,
		EnableRateLimit: true,
	}
}

// Load reads configuration from environment variables and resolves the
// model credential. A missing credential is an error.
func Load() (*Config, error) {
	cfg := FromEnv()

	key, err := ResolveAPIKey(cfg.LLM.SecretsPath)
	if err != nil {
		return nil, err
	}
	cfg.LLM.APIKey = key

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv builds a Config from the environment without resolving secrets
// or validating. Commands that never call the model use it directly.
func FromEnv() *Config {
	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 6*time.Minute),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		LogDir:    getEnv("LOG_DIR", "./logs"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Version: getEnv("VERSION", "1.0.0"),

		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CORS: CORSConfig{
			Enabled:          getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins:   getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getEnvAsStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 30),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 5),
		},

		LLM: LLMConfig{
			BaseURL:           getEnv("LLM_BASE_URL", DefaultBaseURL),
			Model:             DefaultModel,
			Temperature:       DefaultTemperature,
			NotesTemplatePath: getEnv("NOTES_TEMPLATE_PATH", ""),
			SecretsPath:       getEnv("SECRETS_PATH", DefaultSecretsPath),
		},

		Transcript: TranscriptConfig{
			Provider:        getEnv("TRANSCRIPT_PROVIDER", ProviderInnertube),
			DefaultLanguage: getEnv("TRANSCRIPT_LANGUAGE", defaultLanguage),
			Throttle:        getEnv("TRANSCRIPT_THROTTLE", ThrottleFixed),
			ThrottleDelay:   getEnvAsDuration("TRANSCRIPT_THROTTLE_DELAY", DefaultThrottleDelay),
			FetchTimeout:    getEnvAsDuration("TRANSCRIPT_FETCH_TIMEOUT", 60*time.Second),
		},

		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", true),
			DSN:     getEnv("CACHE_DSN", DefaultCacheDSN),
			TTL:     getEnvAsDuration("CACHE_TTL", time.Hour),
		},

		Storage: StorageConfig{
			AccessKey: getEnv("SPACES_ACCESS_KEY", ""),
			SecretKey: getEnv("SPACES_SECRET_KEY", ""),
			Region:    getEnv("SPACES_REGION", "us-east-1"),
			Endpoint:  getEnv("SPACES_ENDPOINT", ""),
			Bucket:    getEnv("SPACES_BUCKET", ""),
			Prefix:    getEnv("SPACES_PREFIX", "reports"),
		},

		Middleware: defaultDevConfig(),
	}

	if os.Getenv("ENV") == "production" {
		cfg.Middleware = defaultProdConfig()
	}

	return cfg
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}

	if err := validateTimeouts(c); err != nil {
		return err
	}

	if err := validateServices(c); err != nil {
		return err
	}

	return nil
}

func validatePaths(c *Config) error {
	if c.LogDir != "" {
		if err := os.MkdirAll(c.LogDir, 0755); err != nil {
			return errors.Wrap(err, "failed to create log directory")
		}
	}

	if c.LLM.NotesTemplatePath != "" {
		if _, err := os.Stat(filepath.Clean(c.LLM.NotesTemplatePath)); err != nil {
			return errors.Wrap(err, "notes template not readable")
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.Transcript.ThrottleDelay < 0 {
		return errors.New("throttle delay must not be negative")
	}
	return nil
}

func validateServices(c *Config) error {
	if c.LLM.APIKey == "" {
		return errors.Errorf("%s is not set", apiKeyEnv)
	}
	if c.LLM.Model == "" {
		return errors.New("model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.Errorf("temperature %.2f out of range", c.LLM.Temperature)
	}

	switch c.Transcript.Provider {
	case ProviderInnertube:
	default:
		return errors.Errorf("unknown transcript provider %q", c.Transcript.Provider)
	}

	switch c.Transcript.Throttle {
	case ThrottleFixed, ThrottleToken, ThrottleNone:
	default:
		return errors.Errorf("unknown throttle policy %q", c.Transcript.Throttle)
	}

	if strings.TrimSpace(c.Transcript.DefaultLanguage) == "" {
		return errors.New("default transcript language is required")
	}

	if c.Cache.Enabled && c.Cache.DSN == "" {
		return errors.New("cache dsn is required when the cache is enabled")
	}

	if c.Storage.Enabled() && (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		return errors.New("spaces access key and secret key must be set together")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return defaultValue
}
