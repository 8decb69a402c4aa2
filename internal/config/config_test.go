package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("NETWATCH_BASE_URL", "https://api.example.com/")
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("PUBLIC_API_KEYS", "pub_a, pub_b,")
	t.Setenv("ADMIN_API_KEYS", "adm_x")
	t.Setenv("PROBE_INTERVAL_MS", "0")
	t.Setenv("PROBE_TIMEOUT_MS", "1234")
	t.Setenv("REFRESH_RPM", "111")
	t.Setenv("ALERT_ON_RECOVERY", "false")
	t.Setenv("INTERNET_CHECK_HOST", "")

	cfg := FromEnv()

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Fatalf("trailing slash should be trimmed: %q", cfg.BaseURL)
	}
	if len(cfg.PublicAPIKeys) != 2 || cfg.PublicAPIKeys[1] != "pub_b" {
		t.Fatalf("public keys wrong: %+v", cfg.PublicAPIKeys)
	}
	if len(cfg.AdminAPIKeys) != 1 || cfg.AdminAPIKeys[0] != "adm_x" {
		t.Fatalf("admin keys wrong: %+v", cfg.AdminAPIKeys)
	}
	if cfg.ProbeInterval() != 30*time.Second {
		t.Fatalf("zero interval should fall back to 30s, got %v", cfg.ProbeInterval())
	}
	if cfg.ProbeTimeout() != 1234*time.Millisecond {
		t.Fatalf("timeout wrong: %v", cfg.ProbeTimeout())
	}
	if cfg.RefreshRPM != 111 || cfg.RefreshBurst != 2 {
		t.Fatalf("refresh limits wrong: %d/%d", cfg.RefreshRPM, cfg.RefreshBurst)
	}
	if cfg.AlertOnRecovery {
		t.Fatalf("ALERT_ON_RECOVERY=false not applied")
	}
	if cfg.InternetCheckHost != "" {
		t.Fatalf("empty INTERNET_CHECK_HOST should disable the check, got %q", cfg.InternetCheckHost)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netwatch.yaml")
	content := []byte(`
base_url: http://file.example.com
api_addr: ":7000"
probe_interval_ms: 10000
admin_api_keys: [from_file]
allowed_origins: ["https://app.example.com"]
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NETWATCH_BASE_URL", "")
	t.Setenv("API_ADDR", ":7001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://file.example.com" {
		t.Fatalf("base url from file not applied: %q", cfg.BaseURL)
	}
	if cfg.Addr != ":7001" {
		t.Fatalf("env should override file, got %q", cfg.Addr)
	}
	if cfg.ProbeInterval() != 10*time.Second {
		t.Fatalf("interval from file not applied: %v", cfg.ProbeInterval())
	}
	if len(cfg.AdminAPIKeys) != 1 || cfg.AdminAPIKeys[0] != "from_file" {
		t.Fatalf("admin keys wrong: %+v", cfg.AdminAPIKeys)
	}
	if cfg.LogLevel != "info" || cfg.HistorySize != 500 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("NETWATCH_BASE_URL", "http://localhost:8081")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" {
		t.Fatalf("default addr wrong: %q", cfg.Addr)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("NETWATCH_BASE_URL", "")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error without base url")
	}

	t.Setenv("NETWATCH_BASE_URL", "ftp://example.com")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("base_url: [unterminated"), 0o644)
	t.Setenv("NETWATCH_BASE_URL", "http://localhost")
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad_BaseURLOption(t *testing.T) {
	t.Setenv("NETWATCH_BASE_URL", "http://env.example.com")
	cfg, err := Load("", WithBaseURL("https://flag.example.com/"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://flag.example.com" {
		t.Fatalf("flag should win over env, got %q", cfg.BaseURL)
	}

	cfg, _ = Load("", WithBaseURL(""))
	if cfg.BaseURL != "http://env.example.com" {
		t.Fatalf("empty flag must keep env value, got %q", cfg.BaseURL)
	}
}
