package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/config"
	"github.com/hamed0406/netwatch/internal/httpapi"
	apimw "github.com/hamed0406/netwatch/internal/httpapi/middleware"
	"github.com/hamed0406/netwatch/internal/notify"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitor, the status API and alerting",
		Long: `Run the monitor, the status API and alerting.

Examples:
  netwatch serve --base-url https://api.example.com
  NETWATCH_BASE_URL=https://api.example.com API_ADDR=:8080 netwatch serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) (err error) {
	a, err := newApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	events, err := notify.NewAMQP(cfg.RabbitMQURL, notify.DefaultExchange, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, events.Close()) }()

	notifiers := notify.Multi{events}
	if slack := notify.NewSlack(cfg.SlackWebhookURL); slack != nil {
		notifiers = append(notifiers, slack)
	}
	alerter := notify.NewAlerter(logger, cfg.BaseURL, notifiers, a.store, notify.AlerterConfig{
		AlertOnRecovery: cfg.AlertOnRecovery,
		Cooldown:        cfg.AlertCooldown(),
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	alertDone := make(chan struct{})
	go func() {
		defer close(alertDone)
		_ = alerter.Run(runCtx)
	}()

	a.source.Start()
	if err := a.monitor.Initialize(runCtx); err != nil {
		return err
	}
	unsubscribe := a.monitor.Subscribe(alerter.Listen)
	defer unsubscribe()

	api := httpapi.NewServer(logger, a.monitor, a.store)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.RefreshRPM, cfg.RefreshBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.String("target", cfg.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_requested")
	case err := <-serveErr:
		if err != nil {
			cancel()
			<-alertDone
			return err
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	err = srv.Shutdown(shutdownCtx)
	cancel()
	<-alertDone
	logger.Info("shutdown_complete", zap.Error(err))
	return err
}
