package agent_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/groqchat/agent"
)

func TestDefaultConfig(t *testing.T) {
	cfg := agent.DefaultConfig()

	if cfg.Provider != agent.DefaultProvider {
		t.Errorf("got Provider %q, want %q", cfg.Provider, agent.DefaultProvider)
	}
	if cfg.Model != agent.DefaultModel {
		t.Errorf("got Model %q, want %q", cfg.Model, agent.DefaultModel)
	}
	if cfg.HasCredential() {
		t.Error("default config should have no credential")
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := agent.DefaultConfig()

	cfg.Merge(&agent.Config{
		Model:       "gemma2-9b-it",
		APIKey:      "secret",
		BaseURL:     "http://localhost:8080/v1/",
		Temperature: 0.2,
		MaxRetries:  3,
	})

	if cfg.Provider != agent.DefaultProvider {
		t.Errorf("got Provider %q, want preserved default", cfg.Provider)
	}
	if cfg.Model != "gemma2-9b-it" {
		t.Errorf("got Model %q, want %q", cfg.Model, "gemma2-9b-it")
	}
	if cfg.APIKey != "secret" {
		t.Errorf("got APIKey %q, want %q", cfg.APIKey, "secret")
	}
	if cfg.BaseURL != "http://localhost:8080/v1/" {
		t.Errorf("got BaseURL %q", cfg.BaseURL)
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("got Temperature %v, want 0.2", cfg.Temperature)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("got MaxRetries %d, want 3", cfg.MaxRetries)
	}
}

func TestNew_MissingCredential(t *testing.T) {
	cfg := agent.DefaultConfig()

	_, err := agent.New(&cfg)
	if !errors.Is(err, agent.ErrMissingCredential) {
		t.Errorf("got %v, want ErrMissingCredential", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := agent.Config{Provider: "does-not-exist", APIKey: "key"}

	_, err := agent.New(&cfg)
	if !errors.Is(err, agent.ErrUnknownProvider) {
		t.Errorf("got %v, want ErrUnknownProvider", err)
	}
}

func TestModels(t *testing.T) {
	models := agent.Models()
	if len(models) == 0 {
		t.Fatal("model catalog is empty")
	}
	if models[0] != agent.DefaultModel {
		t.Errorf("got first model %q, want default %q", models[0], agent.DefaultModel)
	}
	if !agent.KnownModel("mixtral-8x7b-32768") {
		t.Error("mixtral-8x7b-32768 should be in the catalog")
	}
	if agent.KnownModel("gpt-unknown") {
		t.Error("unexpected model reported as known")
	}

	models[0] = "tampered"
	if agent.Models()[0] != agent.DefaultModel {
		t.Error("Models returned an aliased slice")
	}
}
