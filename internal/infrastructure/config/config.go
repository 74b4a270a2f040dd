package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// BridgeConfig configures the HTTP surface.
type BridgeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // local, production
}

// CatalogConfig points at the external Catalog API.
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AgentConfig configures the reasoning loop and its model providers.
type AgentConfig struct {
	Model         string              `mapstructure:"model"`
	Temperature   float64             `mapstructure:"temperature"`
	MaxSteps      int                 `mapstructure:"max_steps"`
	MaxRetries    int                 `mapstructure:"max_retries"`
	RetryBaseWait time.Duration       `mapstructure:"retry_base_wait"`
	ToolTimeout   time.Duration       `mapstructure:"tool_timeout"`
	Providers     []LLMProviderConfig `mapstructure:"providers"`
}

// LLMProviderConfig configures one model provider endpoint.
type LLMProviderConfig struct {
	Name    string   `mapstructure:"name"`
	Type    string   `mapstructure:"type"` // "openai" (default; covers Groq)
	BaseURL string   `mapstructure:"base_url"`
	APIKey  string   `mapstructure:"api_key"`
	Models  []string `mapstructure:"models"`
}

// SpeechConfig points at the external speech service.
type SpeechConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DefaultLanguage string        `mapstructure:"default_language"`
}

// DatabaseConfig configures the local interaction log store.
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // sqlite, postgres, memory
	DSN  string `mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration in layers, lowest priority first:
// defaults -> ~/.dharti/config.yaml -> ./config/config.yaml or
// ./config.yaml -> DHARTI_* environment variables. A .env file in the
// working directory is applied to the environment first, matching how
// the rest of the deployment loads secrets.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Layer 1: global config ~/.dharti/config.yaml (API keys, providers)
	globalDir := filepath.Join(os.Getenv("HOME"), ".dharti")
	v.AddConfigPath(globalDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read global config: %w", err)
		}
	}

	// Layer 2: project-local overrides
	if path := LocalConfigPath(); path != "" {
		v2 := viper.New()
		v2.SetConfigFile(path)
		if err := v2.ReadInConfig(); err == nil {
			_ = v.MergeConfigMap(v2.AllSettings())
		}
	}

	// Layer 3: environment variables (DHARTI_AGENT_MAX_STEPS etc.)
	v.SetEnvPrefix("DHARTI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LocalConfigPath returns the first project-local config file found,
// or "" if none exists. Exported for the hot-reload watcher.
func LocalConfigPath() string {
	for _, dir := range []string{"./config", "."} {
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bridge.host", "0.0.0.0")
	v.SetDefault("bridge.port", 8005)
	v.SetDefault("bridge.mode", "local")

	// Catalog API collaborator
	v.SetDefault("catalog.base_url", "http://localhost:8000/api")
	v.SetDefault("catalog.timeout", "15s")

	// Agent defaults — model mirrors the Groq-hosted deployment
	v.SetDefault("agent.model", "llama3-70b-8192")
	v.SetDefault("agent.temperature", 0.7)
	v.SetDefault("agent.max_steps", 30)
	v.SetDefault("agent.max_retries", 3)
	v.SetDefault("agent.retry_base_wait", "2s")
	v.SetDefault("agent.tool_timeout", "30s")

	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.timeout", "30s")
	v.SetDefault("speech.default_language", "en-IN")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "dharti-bridge.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
