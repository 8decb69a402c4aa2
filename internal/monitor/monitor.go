// Package monitor owns the process's view of connectivity. It merges
// passive link events with periodic active probes of the backend and
// publishes the result to subscribers.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/domain"
	"github.com/hamed0406/netwatch/internal/link"
	"github.com/hamed0406/netwatch/internal/probe"
	"github.com/hamed0406/netwatch/internal/publisher"
	"github.com/hamed0406/netwatch/internal/repo"
)

const DefaultInterval = 30 * time.Second

// ErrAlreadyInitialized is returned when Initialize runs twice without Cleanup.
var ErrAlreadyInitialized = errors.New("monitor: already initialized")

type Config struct {
	Interval    time.Duration
	NewTicker   TickerFunc
	Transitions repo.TransitionStore // optional
}

// Monitor is the single owner of the current NetworkStatus.
//
// Every change of the link's connected flag starts a new generation, and
// every probe takes a sequence number when it starts. A probe result is
// applied only while its generation is current and no later probe has
// already landed, so a slow probe can never undo a newer offline event.
type Monitor struct {
	logger      *zap.Logger
	link        link.Source
	prober      probe.Prober
	pub         *publisher.Publisher
	interval    time.Duration
	newTicker   TickerFunc
	transitions repo.TransitionStore
	now         func() time.Time

	mu      sync.Mutex
	status  domain.NetworkStatus
	gen     uint64
	seq     uint64
	applied uint64

	// notifyMu serializes deliveries so every listener sees snapshots in order.
	notifyMu sync.Mutex

	lifeMu  sync.Mutex
	running bool
	unwatch func()
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(logger *zap.Logger, src link.Source, prober probe.Prober, pub *publisher.Publisher, cfg Config) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = publisher.New(logger)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewRealTicker
	}
	return &Monitor{
		logger:      logger,
		link:        src,
		prober:      prober,
		pub:         pub,
		interval:    cfg.Interval,
		newTicker:   cfg.NewTicker,
		transitions: cfg.Transitions,
		now:         func() time.Time { return time.Now().UTC() },
		status:      domain.DefaultStatus(),
	}
}

// Initialize starts watching the link, reconciles one snapshot, probes
// once if connected and starts the periodic probe loop. It returns after
// that first probe.
func (m *Monitor) Initialize(ctx context.Context) error {
	m.lifeMu.Lock()
	if m.running {
		m.lifeMu.Unlock()
		return ErrAlreadyInitialized
	}
	runCtx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	m.unwatch = m.link.Watch(func(ls domain.LinkState) { m.onLinkChange(runCtx, ls) })
	done := m.done
	m.lifeMu.Unlock()

	m.logger.Info("monitor_start", zap.Duration("interval", m.interval))

	if ls, err := m.link.Current(ctx); err != nil {
		m.logger.Warn("link_snapshot_error", zap.Error(err))
	} else {
		m.reconcile(runCtx, ls)
	}
	if m.Status().IsConnected {
		m.probe(ctx)
	}

	go m.run(runCtx, done)
	return nil
}

// Cleanup detaches from the link, stops the loop, drops all subscribers
// and resets status. Safe to call without Initialize and more than once.
func (m *Monitor) Cleanup() {
	m.lifeMu.Lock()
	if m.running {
		m.unwatch()
		m.cancel()
		<-m.done
		m.running = false
		m.unwatch, m.cancel, m.done = nil, nil, nil
		m.logger.Info("monitor_stopped")
	}
	m.lifeMu.Unlock()

	m.pub.Clear()

	m.mu.Lock()
	m.status = domain.DefaultStatus()
	m.gen++
	m.mu.Unlock()
}

// Refresh reconciles a fresh link snapshot and forces a probe regardless
// of the timer. The returned status is also published.
func (m *Monitor) Refresh(ctx context.Context) domain.NetworkStatus {
	if ls, err := m.link.Current(ctx); err != nil {
		m.logger.Warn("link_snapshot_error", zap.Error(err))
	} else {
		m.reconcile(context.Background(), ls)
	}
	return m.probe(ctx)
}

// Subscribe registers fn, delivers the current status to it right away
// and then on every change. fn must not call Subscribe or Refresh
// synchronously.
func (m *Monitor) Subscribe(fn publisher.Listener) (unsubscribe func()) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	id, remove := m.pub.Add(fn)
	m.pub.Deliver(id, fn, m.Status())
	return remove
}

// Status returns a snapshot of the current status.
func (m *Monitor) Status() domain.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.Clone()
}

// State is the derived connectivity state.
func (m *Monitor) State() domain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.State()
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := m.newTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !m.Status().IsConnected {
				continue
			}
			m.probe(ctx)
		}
	}
}

func (m *Monitor) onLinkChange(ctx context.Context, ls domain.LinkState) {
	wasConnected, ok := m.reconcile(ctx, ls)
	if ok && ls.Connected && !wasConnected {
		m.probe(ctx)
	}
}

// reconcile applies a passive reading and always publishes, since the
// diagnostic fields may have changed even when connectivity did not.
// Readings arriving after life is done are dropped; the check runs under
// mu so a late watcher event cannot overwrite the state Cleanup reset.
func (m *Monitor) reconcile(life context.Context, ls domain.LinkState) (wasConnected, applied bool) {
	m.mu.Lock()
	if life.Err() != nil {
		m.mu.Unlock()
		m.logger.Debug("link_change_dropped", zap.Bool("connected", ls.Connected))
		return false, false
	}
	before := m.status.State()
	wasConnected = m.status.IsConnected

	m.status.IsConnected = ls.Connected
	m.status.IsInternetReachable = nil
	if ls.InternetReachable != nil {
		m.status.IsInternetReachable = domain.Tri(*ls.InternetReachable)
	}
	m.status.ConnectionType = ls.Type
	if m.status.ConnectionType == "" {
		m.status.ConnectionType = domain.ConnUnknown
	}
	if ls.Connected != wasConnected {
		m.gen++
		m.status.Probed = false
	}
	if !ls.Connected {
		m.status.IsServerReachable = false
	}
	m.status.CheckedAt = m.now()
	after := m.status.State()
	snap := m.status.Clone()
	m.mu.Unlock()

	m.logger.Info("link_change",
		zap.Bool("connected", ls.Connected),
		zap.String("type", snap.ConnectionType),
		zap.String("internet", domain.TriString(snap.IsInternetReachable)),
	)
	m.recordTransition(before, after, snap)
	m.publish()
	return wasConnected, true
}

// probe runs one health check and applies it unless superseded.
// Results publish when server reachability flips, and for the first
// result after the link came up.
func (m *Monitor) probe(ctx context.Context) domain.NetworkStatus {
	m.mu.Lock()
	if !m.status.IsConnected {
		snap := m.status.Clone()
		m.mu.Unlock()
		return snap
	}
	gen := m.gen
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	ok := m.prober.CheckServerHealth(ctx)

	m.mu.Lock()
	if gen != m.gen || !m.status.IsConnected || seq <= m.applied {
		snap := m.status.Clone()
		m.mu.Unlock()
		m.logger.Debug("probe_stale", zap.Uint64("seq", seq), zap.Uint64("gen", gen), zap.Bool("up", ok))
		return snap
	}
	before := m.status.State()
	m.applied = seq
	changed := m.status.IsServerReachable != ok || !m.status.Probed
	m.status.IsServerReachable = ok
	m.status.Probed = true
	m.status.CheckedAt = m.now()
	after := m.status.State()
	snap := m.status.Clone()
	m.mu.Unlock()

	m.logger.Debug("probe_applied", zap.Uint64("seq", seq), zap.Bool("up", ok), zap.Bool("changed", changed))
	m.recordTransition(before, after, snap)
	if changed {
		m.publish()
	}
	return snap
}

func (m *Monitor) publish() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	m.pub.Notify(m.Status())
}

func (m *Monitor) recordTransition(from, to domain.State, snap domain.NetworkStatus) {
	if from == to {
		return
	}
	m.logger.Info("monitor_state",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Bool("server_reachable", snap.IsServerReachable),
	)
	if m.transitions == nil {
		return
	}
	err := m.transitions.Append(context.Background(), &repo.Transition{
		At:     snap.CheckedAt,
		From:   from,
		To:     to,
		Status: snap,
	})
	if err != nil {
		m.logger.Warn("transition_append_error", zap.Error(err))
	}
}
