package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/banner"
	"github.com/hamed0406/netwatch/internal/domain"
	"github.com/hamed0406/netwatch/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter turns banner changes into notifications. Down alerts respect
// the cooldown; recovery alerts bypass it.
type Alerter struct {
	logger   *zap.Logger
	target   string
	notifier Notifier
	alertDB  repo.AlertStore
	cfg      AlerterConfig
	now      func() time.Time

	pending chan domain.NetworkStatus
}

func NewAlerter(logger *zap.Logger, target string, notifier Notifier, alertDB repo.AlertStore, cfg AlerterConfig) *Alerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Alerter{
		logger:   logger,
		target:   target,
		notifier: notifier,
		alertDB:  alertDB,
		cfg:      cfg,
		now:      time.Now,
		pending:  make(chan domain.NetworkStatus, 1),
	}
}

// Listen is a monitor listener. It never blocks; if Run is behind, only
// the newest status is kept.
func (a *Alerter) Listen(s domain.NetworkStatus) {
	for {
		select {
		case a.pending <- s:
			return
		default:
		}
		select {
		case <-a.pending:
		default:
		}
	}
}

// Run drains statuses until ctx is cancelled.
func (a *Alerter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-a.pending:
			if err := a.handle(ctx, s); err != nil {
				a.logger.Warn("alert_send_error", zap.Error(err))
			}
		}
	}
}

func (a *Alerter) handle(ctx context.Context, s domain.NetworkStatus) error {
	// Link up with no health result yet: wait for the result instead of
	// reporting recovery or an outage that may not exist.
	if s.State() == domain.OnlineUnknown {
		a.logger.Debug("alert_skip_unknown", zap.String("target", a.target))
		return nil
	}
	kind := banner.KindOf(s)
	rec, err := a.alertDB.Get(ctx, a.target)
	if err != nil {
		return fmt.Errorf("load alert record: %w", err)
	}

	now := a.now()
	stateChanged := rec == nil || rec.LastKind != string(kind)

	// Cooldown only matters for down alerts.
	cooled := true
	if rec != nil && rec.LastSentAt != nil {
		cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
	}

	downAlert := stateChanged && kind.Down() && cooled
	// no recovery without a recorded outage
	recoveryAlert := stateChanged && !kind.Down() && rec != nil && a.cfg.AlertOnRecovery

	if !downAlert && !recoveryAlert {
		if stateChanged {
			return a.alertDB.Set(ctx, a.target, string(kind), time.Time{})
		}
		return nil
	}

	var prev banner.Kind
	if rec != nil {
		prev = banner.Kind(rec.LastKind)
	}
	alert := buildAlert(a.target, prev, kind, s, now)
	sendErr := a.notifier.Notify(ctx, alert)
	a.logger.Info("alert_sent",
		zap.String("target", a.target),
		zap.String("from", string(prev)),
		zap.String("to", string(kind)),
		zap.Bool("ok", sendErr == nil),
	)
	if err := a.alertDB.Set(ctx, a.target, string(kind), now); err != nil {
		return err
	}
	return sendErr
}

func buildAlert(target string, prev, kind banner.Kind, s domain.NetworkStatus, at time.Time) Alert {
	title := "🟢 Backend RECOVERED"
	switch kind {
	case banner.Offline:
		title = "🔴 Device OFFLINE"
	case banner.ServerUnreachable:
		title = "🟠 Backend UNREACHABLE"
	}
	text := fmt.Sprintf(
		"Target: %s\nConnected: %t\nInternet: %s\nServer: %t\nLink: %s\nChecked: %s",
		target, s.IsConnected, domain.TriString(s.IsInternetReachable), s.IsServerReachable,
		s.ConnectionType, at.UTC().Format(time.RFC3339),
	)
	return Alert{
		Title:    title,
		Text:     text,
		Target:   target,
		Previous: prev,
		Current:  kind,
		Status:   s.Clone(),
		At:       at,
	}
}
