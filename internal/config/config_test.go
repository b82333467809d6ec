package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-from-env")
	os.Unsetenv("TEST_LLM_MODEL")

	path := writeConfig(t, `{
		"llm": {
			"endpoint": "${TEST_LLM_ENDPOINT:https://fallback.example/v1}",
			"api_key": "${TEST_LLM_KEY}",
			"model": "${TEST_LLM_MODEL:village-chat}"
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q, want the env value", cfg.LLM.APIKey)
	}
	if cfg.LLM.Endpoint != "https://fallback.example/v1" {
		t.Errorf("endpoint = %q, want the inline default", cfg.LLM.Endpoint)
	}
	if cfg.LLM.Model != "village-chat" {
		t.Errorf("model = %q, want the inline default", cfg.LLM.Model)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 3210 {
		t.Errorf("port = %d, want 3210", cfg.Server.Port)
	}
	if cfg.World.TickSeconds != 5 {
		t.Errorf("tick_seconds = %d, want 5", cfg.World.TickSeconds)
	}
	if cfg.World.Speed != 1 {
		t.Errorf("speed = %v, want 1", cfg.World.Speed)
	}
	if cfg.World.AutosaveMinutes != 2 {
		t.Errorf("autosave_minutes = %d, want 2", cfg.World.AutosaveMinutes)
	}
	if cfg.Seed == 0 {
		t.Error("seed should default to a nonzero value")
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"server": {"port": 8080},
		"world": {"tick_seconds": 1, "speed": 12, "autosave_minutes": 5},
		"seed": 42
	}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.World.Speed != 12 || cfg.Seed != 42 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := Load(writeConfig(t, `{not json`)); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestLLMTimeout(t *testing.T) {
	c := LLMConfig{TimeoutSeconds: 30}
	if got := c.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", got)
	}
	if got := (LLMConfig{}).Timeout(); got != 0 {
		t.Errorf("Timeout() = %v, want 0 when unset", got)
	}
}
