package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Assistant AssistantConfig `yaml:"assistant"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// PublicURL is the origin browsers use to reach the console.
	PublicURL string `yaml:"public_url"`
	Env       string `yaml:"env"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AssistantConfig points at the chat/RAG/TTS service. An empty BaseURL is
// derived from Server.PublicURL.
type AssistantConfig struct {
	BaseURL      string `yaml:"base_url"`
	Character    string `yaml:"character"`
	Model        string `yaml:"model"`
	RAGTopK      int    `yaml:"rag_top_k"`
	SystemPrompt string `yaml:"system_prompt"`
	// ContextTTL bounds how long a session's document context survives in Redis.
	ContextTTL time.Duration `yaml:"context_ttl"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsPath string `yaml:"credentials_path"`
	APIKey          string `yaml:"api_key"`
	AuthDomain      string `yaml:"auth_domain"`
	ProjectID       string `yaml:"project_id"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, Env: "development"},
		Backend: BackendConfig{BaseURL: "http://localhost:8000/api", Timeout: 30 * time.Second},
		Assistant: AssistantConfig{
			Character:    "예진이",
			Model:        "groq",
			RAGTopK:      10,
			SystemPrompt: "You are a friendly assistant for the project settlement console.",
			ContextTTL:   12 * time.Hour,
		},
		Auth: AuthConfig{CredentialsPath: "./firebase-service-account.json"},
		Log:  LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
	}
}

// Load reads .env, then the first YAML file found, then environment overrides.
// A missing file is not an error; a malformed one is.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment")
	}

	c := Default()

	paths := []string{"etc/config.yaml", "/etc/settlement-console/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	envOverrideInt(&c.Server.Port, "PORT")
	envOverride(&c.Server.PublicURL, "PUBLIC_URL")
	envOverride(&c.Server.Env, "ENV")
	envOverride(&c.Backend.BaseURL, "BACKEND_BASE_URL")
	envOverrideDuration(&c.Backend.Timeout, "BACKEND_TIMEOUT")
	envOverride(&c.Assistant.BaseURL, "ASSISTANT_BASE_URL")
	envOverride(&c.Assistant.Character, "ASSISTANT_CHARACTER")
	envOverride(&c.Assistant.Model, "ASSISTANT_MODEL")
	envOverrideInt(&c.Assistant.RAGTopK, "RAG_TOP_K")
	envOverride(&c.Redis.URL, "REDIS_URL")
	envOverrideBool(&c.Auth.Enabled, "AUTH_ENABLED")
	envOverride(&c.Auth.CredentialsPath, "FIREBASE_CREDENTIALS_PATH")
	envOverride(&c.Auth.APIKey, "FIREBASE_API_KEY")
	envOverride(&c.Auth.AuthDomain, "FIREBASE_AUTH_DOMAIN")
	envOverride(&c.Auth.ProjectID, "FIREBASE_PROJECT_ID")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")

	return c, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envOverrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
