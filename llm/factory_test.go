package llm

import (
	"errors"
	"testing"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		in   string
		want ProviderType
	}{
		{"groq", ProviderGroq},
		{"GROQ", ProviderGroq},
		{"openai", ProviderOpenAI},
		{"gpt", ProviderOpenAI},
		{"anthropic", ProviderAnthropic},
		{"claude", ProviderAnthropic},
		{"gemini", ProviderGemini},
		{"google", ProviderGemini},
	}

	for _, tt := range tests {
		got, err := ParseProviderType(tt.in)
		if err != nil {
			t.Errorf("ParseProviderType(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProviderType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseProviderTypeUnknown(t *testing.T) {
	if _, err := ParseProviderType("deepseek"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestProviderDefaults(t *testing.T) {
	if ProviderGroq.DefaultModel() != ModelGroqLlama33Versatile {
		t.Errorf("unexpected groq default: %s", ProviderGroq.DefaultModel())
	}
	if ProviderGroq.EnvVar() != "GROQ_API_KEY" {
		t.Errorf("unexpected groq env var: %s", ProviderGroq.EnvVar())
	}
	if ProviderAnthropic.String() != "anthropic" {
		t.Errorf("unexpected provider name: %s", ProviderAnthropic)
	}
}

func TestBuilderAppliesDefaults(t *testing.T) {
	provider, err := NewProviderBuilder(ProviderGroq).APIKey("test-key")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if provider.Name() != "groq" {
		t.Errorf("expected provider 'groq', got %q", provider.Name())
	}
	if provider.Model() != ModelGroqLlama33Versatile {
		t.Errorf("expected default model, got %q", provider.Model())
	}
}

func TestBuilderCustomModel(t *testing.T) {
	provider, err := ProviderGroq.Model(ModelGroqLlama31Instant).APIKey("test-key")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if provider.Model() != ModelGroqLlama31Instant {
		t.Errorf("expected custom model, got %q", provider.Model())
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrModelUnavailable) {
		t.Error("ErrModelUnavailable should be retryable")
	}

	malformed := &MalformedToolCallError{Tool: "calculator", Reason: "bad args"}
	if IsRetryable(malformed) {
		t.Error("MalformedToolCallError should not be retryable")
	}

	if IsRetryable(errors.New("something else")) {
		t.Error("unclassified errors should not be retryable")
	}
}

func TestMalformedToolCallErrorMessage(t *testing.T) {
	err := &MalformedToolCallError{Tool: "weather", Reason: "unknown tool"}
	want := `malformed tool call "weather": unknown tool`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", err.Error(), want)
	}
}
