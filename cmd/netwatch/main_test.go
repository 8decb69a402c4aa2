package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/netwatch/internal/config"
	"github.com/hamed0406/netwatch/internal/domain"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	t.Setenv("LOG_DIR", t.TempDir())
	t.Setenv("SLACK_WEBHOOK_URL", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("INTERNET_CHECK_HOST", "")
	cfg, err := config.Load("", config.WithBaseURL(baseURL))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "check", "watch", "preflight"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("missing subcommand %q", name)
		}
	}
	for _, flag := range []string{"config", "base-url"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing persistent flag --%s", flag)
		}
	}
}

func TestPreflight_WarnsButPasses(t *testing.T) {
	cfg := testConfig(t, "https://api.example.com")
	var out, errOut bytes.Buffer
	if !preflight(context.Background(), cfg, nil, &out, &errOut) {
		t.Fatalf("expected pass, stderr:\n%s", errOut.String())
	}
	if !strings.Contains(out.String(), "preflight passed") {
		t.Fatalf("missing pass line:\n%s", out.String())
	}
	if !strings.Contains(errOut.String(), "ADMIN_API_KEYS is empty") {
		t.Fatalf("missing admin key warning:\n%s", errOut.String())
	}
}

func TestPreflight_Failures(t *testing.T) {
	t.Setenv("PUBLIC_API_KEYS", "shared_key")
	t.Setenv("ADMIN_API_KEYS", "shared_key")
	t.Setenv("PROBE_INTERVAL_MS", "1000")
	t.Setenv("PROBE_TIMEOUT_MS", "5000")
	cfg := testConfig(t, "https://api.example.com")

	var out, errOut bytes.Buffer
	if preflight(context.Background(), cfg, func(context.Context) bool { return false }, &out, &errOut) {
		t.Fatalf("expected failure")
	}
	for _, want := range []string{"both public and admin", "must be shorter than probe interval", "backend health check failed"} {
		if !strings.Contains(errOut.String(), want) {
			t.Fatalf("missing %q in:\n%s", want, errOut.String())
		}
	}
	if strings.Contains(errOut.String(), "shared_key") {
		t.Fatalf("keys must be masked:\n%s", errOut.String())
	}
}

func TestCheckCmd_HealthyBackend(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/actuator/health" {
			hits++
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()
	testConfig(t, ts.URL)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"check", "--base-url", ts.URL})
	err := root.ExecuteContext(context.Background())

	// the host running the test may have no usable interface
	if strings.Contains(out.String(), "connected=false") {
		t.Skipf("no network link on this host:\n%s", out.String())
	}
	if hits != 1 {
		t.Fatalf("want one health probe, got %d", hits)
	}
	if err != nil {
		t.Fatalf("check should pass against a healthy backend: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "banner:   hidden") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestBannerPrinter_OnlyChanges(t *testing.T) {
	p := &bannerPrinter{}
	at := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	up := domain.NetworkStatus{IsConnected: true, IsServerReachable: true, Probed: true, ConnectionType: domain.ConnWiFi}
	down := domain.NetworkStatus{IsConnected: false, ConnectionType: domain.ConnNone}

	if _, ok := p.line(up, at); !ok {
		t.Fatalf("first status should print")
	}
	if _, ok := p.line(up, at); ok {
		t.Fatalf("unchanged banner should not print")
	}
	line, ok := p.line(down, at)
	if !ok || !strings.Contains(line, "offline") || !strings.HasPrefix(line, "2026-10-14T12:00:00Z") {
		t.Fatalf("unexpected line %q", line)
	}

	all := &bannerPrinter{all: true}
	all.line(up, at)
	if _, ok := all.line(up, at); !ok {
		t.Fatalf("--all should print repeats")
	}
}
