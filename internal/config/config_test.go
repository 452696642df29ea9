package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAppConfigDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	c := &Config{AirwaveDir: dir, App: defaultAppConfig()}
	if err := c.loadAppConfig(); err != nil {
		t.Fatalf("loadAppConfig returned error: %v", err)
	}
	if c.App.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.App.Version)
	}
	if c.UserID() != defaultUserID {
		t.Fatalf("expected default user %q, got %q", defaultUserID, c.UserID())
	}
	if c.App.LLM.Model != defaultLLMModel {
		t.Fatalf("expected default model %q, got %q", defaultLLMModel, c.App.LLM.Model)
	}
	if c.DBPath() != filepath.Join(dir, defaultDatabaseFile) {
		t.Fatalf("unexpected db path: %s", c.DBPath())
	}
}

func TestLoadAppConfigParsesYaml(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
user: sofia
llm:
  model: gpt-4o
  api_key: sk-test
news:
  limit: 5
  categories:
    - Technology
  sources:
    - name: metro-fm
      feed: https://example.com/feed.xml
    - name: city-desk
      page: https://example.com/news
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c := &Config{AirwaveDir: dir, App: defaultAppConfig()}
	if err := c.loadAppConfig(); err != nil {
		t.Fatalf("loadAppConfig returned error: %v", err)
	}
	if c.UserID() != "sofia" {
		t.Fatalf("wrong user: %s", c.UserID())
	}
	if len(c.Sources()) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(c.Sources()))
	}
	if c.App.News.Categories[0] != "technology" {
		t.Fatalf("expected lowercased category, got %q", c.App.News.Categories[0])
	}
	if c.App.LLM.APIURL != defaultLLMAPIURL {
		t.Fatalf("expected api_url default to survive, got %q", c.App.LLM.APIURL)
	}
}

func TestLoadAppConfigValidation(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
news:
  sources:
    - name: broken-source
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c := &Config{AirwaveDir: dir, App: defaultAppConfig()}
	if err := c.loadAppConfig(); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AIRWAVE_DB_PATH", "/tmp/custom.db")
	t.Setenv("AIRWAVE_USER", "marco")
	t.Setenv("AIRWAVE_LLM_MODEL", "gpt-4o")
	c := &Config{AirwaveDir: t.TempDir(), App: defaultAppConfig()}
	c.applyEnvOverrides()
	if c.DBPath() != "/tmp/custom.db" {
		t.Fatalf("db path override not applied: %s", c.DBPath())
	}
	if c.UserID() != "marco" {
		t.Fatalf("user override not applied: %s", c.UserID())
	}
	if c.App.LLM.Model != "gpt-4o" {
		t.Fatalf("model override not applied: %s", c.App.LLM.Model)
	}
}

func TestInitAirwaveDirWritesDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".airwave")
	if err := InitAirwaveDir(dir); err != nil {
		t.Fatalf("InitAirwaveDir returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !strings.Contains(string(data), "airwave configuration") {
		t.Fatalf("default config missing header")
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Fatalf("logs dir not created: %v", err)
	}
}
