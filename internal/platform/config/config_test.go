package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
provider:
  api_url: https://api.example
  auth_url: https://accounts.example/connect/token
callbacks:
  ttl: 1h
debug:
  environment: development
  endpoints: true
merchants:
  acme:
    client_id: cid
    client_secret: csec
    webhook_secret: whsec
    require_signature: true
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Provider.AuthURL != "https://accounts.example/connect/token" {
		t.Errorf("unexpected auth url %s", cfg.Provider.AuthURL)
	}
	if cfg.Callbacks.TTL != time.Hour {
		t.Errorf("expected 1h ttl, got %v", cfg.Callbacks.TTL)
	}

	// Defaults fill in what the file omits.
	if cfg.Webhooks.DeliveryTimeout != 10*time.Second {
		t.Errorf("expected default delivery timeout, got %v", cfg.Webhooks.DeliveryTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}

	mc, ok := cfg.Merchants["acme"]
	if !ok {
		t.Fatal("expected acme merchant config")
	}
	if mc.ClientID != "cid" || !mc.RequireSignature {
		t.Errorf("unexpected merchant config %+v", mc)
	}

	if cfg.Production() {
		t.Error("expected development environment to not be production")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
