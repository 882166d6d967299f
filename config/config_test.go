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

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Search.StrictMatch {
		t.Fatalf("strict match should default to true")
	}
	if cfg.Search.MaxResults != 6 || cfg.Search.Region != "wt-wt" {
		t.Fatalf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Search.MinLenPrimary != 220 || cfg.Search.MinLenFallback != 60 {
		t.Fatalf("unexpected tier thresholds: %d/%d", cfg.Search.MinLenPrimary, cfg.Search.MinLenFallback)
	}
	if cfg.Fetch.Timeout != 12*time.Second || cfg.Fetch.Renderer != "http" {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Corpus.TopK != 10 {
		t.Fatalf("expected top_k 10, got %d", cfg.Corpus.TopK)
	}
	if cfg.Storage.Checkpoints != "memory" {
		t.Fatalf("expected memory checkpoints, got %q", cfg.Storage.Checkpoints)
	}
}

func TestLoadConfigFileValues(t *testing.T) {
	path := writeConfig(t, `{
		"search": {"backend": "Brave", "max_results": 4, "last_resort_pass": false},
		"fetch": {"renderer": "chromedp", "timeout": "14s"}
	}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Search.Backend != "brave" {
		t.Fatalf("backend should be normalized, got %q", cfg.Search.Backend)
	}
	if cfg.Search.MaxResults != 4 || cfg.Search.LastResortPass {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Fetch.Renderer != "chromedp" || cfg.Fetch.Timeout != 14*time.Second {
		t.Fatalf("unexpected fetch config: %+v", cfg.Fetch)
	}
}

func TestLoadConfigLegacyEnv(t *testing.T) {
	t.Setenv("STRICT_ORA_MATCH", "0")
	t.Setenv("WEB_SEARCH_BACKEND", "html")
	t.Setenv("INSECURE_SKIP_VERIFY", "true")

	cfg, err := LoadConfig(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Search.StrictMatch {
		t.Fatalf("STRICT_ORA_MATCH=0 should disable strict matching")
	}
	if cfg.Search.Backend != "html" {
		t.Fatalf("expected html backend, got %q", cfg.Search.Backend)
	}
	if !cfg.TLS.InsecureSkipVerify {
		t.Fatalf("expected insecure skip verify")
	}
}

func TestLoadConfigLegacyBackendNames(t *testing.T) {
	cases := map[string]string{
		"ddgs":              "serper",
		"duckduckgo_search": "brave",
		"HTML":              "html",
	}
	for legacy, want := range cases {
		t.Run(legacy, func(t *testing.T) {
			t.Setenv("WEB_SEARCH_BACKEND", legacy)
			cfg, err := LoadConfig(writeConfig(t, `{}`))
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if cfg.Search.Backend != want {
				t.Fatalf("WEB_SEARCH_BACKEND=%s: expected %q, got %q", legacy, want, cfg.Search.Backend)
			}
		})
	}
}

func TestLoadConfigPrefixedEnvWins(t *testing.T) {
	t.Setenv("ORATRIAGE_SEARCH_BACKEND", "serper")
	t.Setenv("WEB_SEARCH_BACKEND", "brave")

	cfg, err := LoadConfig(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Search.Backend != "serper" {
		t.Fatalf("expected prefixed env to win, got %q", cfg.Search.Backend)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"backend":  `{"search": {"backend": "bing"}}`,
		"renderer": `{"fetch": {"renderer": "wget"}}`,
		"timeout":  `{"fetch": {"timeout": "30s"}}`,
		"storage":  `{"storage": {"checkpoints": "postgres"}}`,
		"ca":       `{"tls": {"ca_bundle": "/does/not/exist.pem"}}`,
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}
