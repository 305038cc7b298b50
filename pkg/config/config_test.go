package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
source:
  type: simulator
  symbols: [AAPL, MSFT]
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.Size != 100 {
		t.Fatalf("window size = %d, want 100", cfg.Window.Size)
	}
	if cfg.Alerts.HighChangePct != 1.8 || cfg.Alerts.MediumChangePct != 1.5 {
		t.Fatalf("alert thresholds = %v/%v", cfg.Alerts.HighChangePct, cfg.Alerts.MediumChangePct)
	}
	if cfg.Index.ChunkSize != 400 || cfg.Index.ChunkOverlap != 80 {
		t.Fatalf("chunking = %d/%d", cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	}
	if cfg.Retriever.VectorWeight != 0.5 {
		t.Fatalf("vector weight = %v", cfg.Retriever.VectorWeight)
	}
	if cfg.Index.Embedder.Type != "hash" {
		t.Fatalf("embedder type = %q", cfg.Index.Embedder.Type)
	}
}

func TestLoadRejectsBadSource(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
source:
  type: carrier-pigeon
  symbols: [AAPL]
`))
	if err == nil {
		t.Fatal("expected validation error for unknown source type")
	}
}

func TestLoadRejectsEmptySymbols(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
source:
  type: simulator
  symbols: []
`))
	if err == nil {
		t.Fatal("expected validation error for empty symbols")
	}
}

func TestLoadRejectsWebsocketWithoutURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
source:
  type: websocket
  symbols: [AAPL]
`))
	if err == nil {
		t.Fatal("expected validation error for websocket source without url")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "TSLA,NVDA")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Source.Symbols) != 2 || cfg.Source.Symbols[0] != "TSLA" {
		t.Fatalf("symbols = %v", cfg.Source.Symbols)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("api key = %q", cfg.LLM.APIKey)
	}
}
