package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.toml")
	content := `
inputs = ["~/chats/family.zip", "/tmp/work.zip"]
topics = 3
log_level = "debug"
extra_stopwords = ["lol"]
`
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WCA_CONFIG", p)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Topics != 3 {
		t.Errorf("topics: expected 3, got %d", cfg.Topics)
	}
	if cfg.Passes != 15 {
		t.Errorf("passes: expected default 15, got %d", cfg.Passes)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level: expected debug, got %s", cfg.LogLevel)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "chats", "family.zip"); cfg.Inputs[0] != want {
		t.Errorf("inputs[0]: expected %s, got %s", want, cfg.Inputs[0])
	}
	if cfg.Inputs[1] != "/tmp/work.zip" {
		t.Errorf("inputs[1]: expected /tmp/work.zip, got %s", cfg.Inputs[1])
	}
	if len(cfg.ExtraStopwords) != 1 || cfg.ExtraStopwords[0] != "lol" {
		t.Errorf("extra_stopwords: got %v", cfg.ExtraStopwords)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("WCA_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Topics != 5 || cfg.Seed != 100 || cfg.TopN != 20 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ListenAddr != "127.0.0.1:5200" {
		t.Errorf("listen_addr: got %s", cfg.ListenAddr)
	}
}

func TestLoad_BadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte("topics = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WCA_CONFIG", p)

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
