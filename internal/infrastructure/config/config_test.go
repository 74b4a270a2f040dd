package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	if got := v.GetInt("bridge.port"); got != 8005 {
		t.Errorf("bridge.port = %d, want 8005", got)
	}
	if got := v.GetString("catalog.base_url"); got != "http://localhost:8000/api" {
		t.Errorf("catalog.base_url = %q", got)
	}
	if got := v.GetString("agent.model"); got != "llama3-70b-8192" {
		t.Errorf("agent.model = %q", got)
	}
	if got := v.GetInt("agent.max_steps"); got != 30 {
		t.Errorf("agent.max_steps = %d, want 30", got)
	}
	if got := v.GetDuration("agent.retry_base_wait"); got != 2*time.Second {
		t.Errorf("agent.retry_base_wait = %s, want 2s", got)
	}
	if got := v.GetString("speech.default_language"); got != "en-IN" {
		t.Errorf("speech.default_language = %q", got)
	}
	if got := v.GetString("database.type"); got != "sqlite" {
		t.Errorf("database.type = %q", got)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // keep any real global config out
	t.Setenv("DHARTI_AGENT_MODEL", "llama3-8b-8192")
	t.Setenv("DHARTI_AGENT_MAX_STEPS", "10")
	t.Setenv("DHARTI_BRIDGE_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Agent.Model != "llama3-8b-8192" {
		t.Errorf("Agent.Model = %q", cfg.Agent.Model)
	}
	if cfg.Agent.MaxSteps != 10 {
		t.Errorf("Agent.MaxSteps = %d, want 10", cfg.Agent.MaxSteps)
	}
	if cfg.Bridge.Port != 9000 {
		t.Errorf("Bridge.Port = %d, want 9000", cfg.Bridge.Port)
	}

	// Untouched keys keep their defaults.
	if cfg.Agent.MaxRetries != 3 {
		t.Errorf("Agent.MaxRetries = %d, want 3", cfg.Agent.MaxRetries)
	}
	if cfg.Catalog.Timeout != 15*time.Second {
		t.Errorf("Catalog.Timeout = %s, want 15s", cfg.Catalog.Timeout)
	}
}
