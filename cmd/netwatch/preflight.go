package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/config"
	"github.com/hamed0406/netwatch/internal/probe"
)

func preflightCmd(f *rootFlags) *cobra.Command {
	var probeBackend bool
	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Validate configuration before deploying",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "✖", err)
				return exitError{msg: "preflight failed"}
			}
			var prober func(ctx context.Context) bool
			if probeBackend {
				hp := probe.NewHealthProbe(zap.NewNop(), cfg.BaseURL, probe.DefaultHealthPath, cfg.ProbeTimeout())
				prober = hp.CheckServerHealth
			}
			if !preflight(cmd.Context(), cfg, prober, cmd.OutOrStdout(), cmd.ErrOrStderr()) {
				return exitError{msg: "preflight failed"}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&probeBackend, "probe", false, "also probe {base_url}/actuator/health once")
	return cmd
}

// preflight prints one line per check and reports whether all passed.
// Warnings do not fail the run.
func preflight(ctx context.Context, cfg config.Config, prober func(context.Context) bool, stdout, stderr io.Writer) bool {
	passed := true
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		passed = false
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	ok("base_url=" + cfg.BaseURL)
	ok("API_ADDR=" + cfg.Addr)

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty (anyone can force a refresh).")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("no API keys configured; /api/status is open.")
	}
	for _, k := range cfg.PublicAPIKeys {
		for _, a := range cfg.AdminAPIKeys {
			if k == a {
				fail("key " + mask(k) + " is listed as both public and admin.")
			}
		}
	}

	if cfg.ProbeTimeout() >= cfg.ProbeInterval() {
		fail(fmt.Sprintf("probe timeout %s must be shorter than probe interval %s", cfg.ProbeTimeout(), cfg.ProbeInterval()))
	} else {
		ok(fmt.Sprintf("probe every %s, timeout %s", cfg.ProbeInterval(), cfg.ProbeTimeout()))
	}

	if cfg.SlackWebhookURL == "" {
		warn("SLACK_WEBHOOK_URL empty; Slack alerts disabled.")
	} else if !strings.HasPrefix(cfg.SlackWebhookURL, "https://") {
		fail("SLACK_WEBHOOK_URL must be https.")
	} else {
		ok("Slack alerts enabled")
	}
	if cfg.RabbitMQURL == "" {
		warn("RABBITMQ_URL empty; status events are only logged.")
	} else {
		ok("RabbitMQ events enabled")
	}
	if cfg.InternetCheckHost == "" {
		warn("INTERNET_CHECK_HOST empty; is_internet_reachable stays unknown.")
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		warn("ALLOWED_ORIGINS is *; any site may read status from a browser.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if prober != nil {
		ctx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout()+time.Second)
		defer cancel()
		if prober(ctx) {
			ok("backend health check passed")
		} else {
			fail("backend health check failed: " + cfg.BaseURL + probe.DefaultHealthPath)
		}
	}

	if passed {
		ok("preflight passed")
	}
	return passed
}

func mask(k string) string {
	if len(k) <= 4 {
		return "****"
	}
	return k[:4] + "****"
}
