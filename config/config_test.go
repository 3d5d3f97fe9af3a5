package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("READ_TIMEOUT", "10s")
	t.Setenv("WRITE_TIMEOUT", "20s")
	t.Setenv("LOG_DIR", t.TempDir())
	t.Setenv("LLM_TEMPERATURE", "0.9")
	t.Setenv("LLM_MODEL", "mistral-large-latest")
	t.Setenv("TRANSCRIPT_PROVIDER", "innertube")
	t.Setenv("TRANSCRIPT_THROTTLE", "none")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.ServerPort)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 20*time.Second {
		t.Errorf("expected 20s, got %s", cfg.WriteTimeout)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Errorf("expected test-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.LLM.Temperature != DefaultTemperature {
		t.Errorf("expected fixed temperature %v, got %v", DefaultTemperature, cfg.LLM.Temperature)
	}
	if cfg.LLM.Model != DefaultModel {
		t.Errorf("expected %s, got %s", DefaultModel, cfg.LLM.Model)
	}
	if cfg.Transcript.Provider != ProviderInnertube {
		t.Errorf("expected innertube, got %s", cfg.Transcript.Provider)
	}
	if cfg.Transcript.Throttle != ThrottleNone {
		t.Errorf("expected none, got %s", cfg.Transcript.Throttle)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("expected 5m, got %s", cfg.Cache.TTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "test-key")
	t.Setenv("LOG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Temperature != DefaultTemperature {
		t.Errorf("expected %v, got %v", DefaultTemperature, cfg.LLM.Temperature)
	}
	if cfg.Transcript.ThrottleDelay != DefaultThrottleDelay {
		t.Errorf("expected %s, got %s", DefaultThrottleDelay, cfg.Transcript.ThrottleDelay)
	}
	if cfg.Transcript.Throttle != ThrottleFixed {
		t.Errorf("expected fixed, got %s", cfg.Transcript.Throttle)
	}
	if cfg.Transcript.DefaultLanguage != "en" {
		t.Errorf("expected en, got %s", cfg.Transcript.DefaultLanguage)
	}
	if cfg.Storage.Enabled() {
		t.Error("expected export storage to be disabled without a bucket")
	}
	if cfg.LLM.BaseURL != DefaultBaseURL {
		t.Errorf("expected %s, got %s", DefaultBaseURL, cfg.LLM.BaseURL)
	}
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_RPM", "many")
	t.Setenv("CACHE_ENABLED", "maybe")

	cfg := FromEnv()

	if cfg.ReadTimeout != 15*time.Second {
		t.Errorf("expected 15s, got %s", cfg.ReadTimeout)
	}
	if cfg.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("expected 30, got %d", cfg.RateLimit.RequestsPerMinute)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache to stay enabled")
	}
}

func TestProductionMiddleware(t *testing.T) {
	t.Setenv("ENV", "production")

	cfg := FromEnv()
	if !cfg.Middleware.EnableRateLimit || !cfg.Middleware.EnableTimeout {
		t.Errorf("expected production middleware, got %+v", cfg.Middleware)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("LOG_DIR", "")

	base := func() *Config {
		cfg := FromEnv()
		cfg.LLM.APIKey = "k"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }, true},
		{"unknown provider", func(c *Config) { c.Transcript.Provider = "scraper" }, true},
		{"ytt provider not supported", func(c *Config) { c.Transcript.Provider = "ytt" }, true},
		{"unknown throttle", func(c *Config) { c.Transcript.Throttle = "sometimes" }, true},
		{"negative delay", func(c *Config) { c.Transcript.ThrottleDelay = -time.Second }, true},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 3 }, true},
		{"empty language", func(c *Config) { c.Transcript.DefaultLanguage = " " }, true},
		{"missing template", func(c *Config) { c.LLM.NotesTemplatePath = "/nonexistent/notes.tmpl" }, true},
		{"storage without secret", func(c *Config) {
			c.Storage.Bucket = "notes"
			c.Storage.AccessKey = "AKIA"
		}, true},
		{"storage with default credentials", func(c *Config) { c.Storage.Bucket = "notes" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	dir := t.TempDir()
	secrets := filepath.Join(dir, "secrets.toml")
	if err := os.WriteFile(secrets, []byte("MISTRAL_API_KEY = \"from-file\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("MISTRAL_API_KEY", "from-env")
		key, err := ResolveAPIKey(secrets)
		if err != nil || key != "from-env" {
			t.Errorf("expected from-env, got %q (%v)", key, err)
		}
	})

	t.Run("secrets file fallback", func(t *testing.T) {
		t.Setenv("MISTRAL_API_KEY", "")
		key, err := ResolveAPIKey(secrets)
		if err != nil || key != "from-file" {
			t.Errorf("expected from-file, got %q (%v)", key, err)
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Setenv("MISTRAL_API_KEY", "")
		_, err := ResolveAPIKey(filepath.Join(dir, "absent.toml"))
		if err != ErrMissingAPIKey {
			t.Errorf("expected ErrMissingAPIKey, got %v", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Setenv("MISTRAL_API_KEY", "")
		bad := filepath.Join(dir, "bad.toml")
		if err := os.WriteFile(bad, []byte("MISTRAL_API_KEY = "), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := ResolveAPIKey(bad); err == nil {
			t.Error("expected parse error")
		}
	})
}
