package config

import (
	"os"
	"testing"
)

func TestNewDefaultsToGroq(t *testing.T) {
	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "groq" {
		t.Errorf("expected provider 'groq', got %q", settings.LLM.Provider)
	}
	if settings.LLM.Model != "llama-3.3-70b-versatile" {
		t.Errorf("unexpected default model: %q", settings.LLM.Model)
	}
}

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	settings, err := New("groq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.MaxTokens != 4096 {
		t.Errorf("expected max tokens 4096, got %d", settings.LLM.MaxTokens)
	}
	if settings.Agent.MaxRounds != 10 {
		t.Errorf("expected max rounds 10, got %d", settings.Agent.MaxRounds)
	}
	if settings.Agent.ModelRetries != 3 {
		t.Errorf("expected model retries 3, got %d", settings.Agent.ModelRetries)
	}
	if settings.Store.Path != "chatbot.db" {
		t.Errorf("expected db path 'chatbot.db', got %q", settings.Store.Path)
	}
	if settings.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %q", settings.Log.Level)
	}
}

func TestNewEnvOverrides(t *testing.T) {
	t.Setenv("AGENT_MAX_ROUNDS", "5")
	t.Setenv("GROQ_MODEL", "llama-3.1-8b-instant")
	t.Setenv("LOOM_DB", "/tmp/test.db")

	settings, err := New("groq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Agent.MaxRounds != 5 {
		t.Errorf("expected max rounds 5, got %d", settings.Agent.MaxRounds)
	}
	if settings.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("expected model override, got %q", settings.LLM.Model)
	}
	if settings.Store.Path != "/tmp/test.db" {
		t.Errorf("expected db path override, got %q", settings.Store.Path)
	}
}

func TestNewInvalidEnvValue(t *testing.T) {
	t.Setenv("AGENT_MAX_ROUNDS", "not-a-number")

	if _, err := New("groq"); err == nil {
		t.Error("expected error for invalid AGENT_MAX_ROUNDS")
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")

	key, err := APIKeyFor("groq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original := os.Getenv("GROQ_API_KEY")
	os.Unsetenv("GROQ_API_KEY")
	defer os.Setenv("GROQ_API_KEY", original)

	_, err := APIKeyFor("groq")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	if _, err := APIKeyFor("nonsense"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestSupportedProviders(t *testing.T) {
	names := SupportedProviders()
	if len(names) != 4 {
		t.Errorf("expected 4 providers, got %d: %v", len(names), names)
	}
}
