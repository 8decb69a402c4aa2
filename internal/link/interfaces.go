package link

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gnet "github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/domain"
)

const DefaultPollInterval = 2 * time.Second

// InternetProber fills in InternetReachable; nil answers mean unknown.
type InternetProber interface {
	Reachable(ctx context.Context) *bool
}

// InterfaceSource derives link state from the host's network interfaces
// and polls for changes. Watchers only hear about actual changes.
type InterfaceSource struct {
	logger   *zap.Logger
	interval time.Duration
	internet InternetProber
	list     func(ctx context.Context) (gnet.InterfaceStatList, error)

	w watchers

	mu      sync.Mutex
	last    domain.LinkState
	hasLast bool

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewInterfaceSource returns a source polling every interval. internet may be nil.
func NewInterfaceSource(logger *zap.Logger, interval time.Duration, internet InternetProber) *InterfaceSource {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterfaceSource{
		logger:   logger,
		interval: interval,
		internet: internet,
		list:     gnet.InterfacesWithContext,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (s *InterfaceSource) Current(ctx context.Context) (domain.LinkState, error) {
	ifaces, err := s.list(ctx)
	if err != nil {
		return domain.LinkState{}, err
	}
	ls := Classify(ifaces)
	if ls.Connected && s.internet != nil {
		ls.InternetReachable = s.internet.Reachable(ctx)
	}
	return ls, nil
}

func (s *InterfaceSource) Watch(fn func(domain.LinkState)) func() {
	return s.w.add(fn)
}

// Start launches the polling loop.
func (s *InterfaceSource) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
	})
}

// Stop terminates the polling loop and waits for it. Safe without Start.
func (s *InterfaceSource) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.started.Load() {
		<-s.doneCh
	}
}

func (s *InterfaceSource) run() {
	defer close(s.doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.poll(ctx)
		case <-s.stopCh:
			return
		}
	}
}

func (s *InterfaceSource) poll(ctx context.Context) {
	ls, err := s.Current(ctx)
	if err != nil {
		s.logger.Warn("link_poll_error", zap.Error(err))
		return
	}

	s.mu.Lock()
	changed := !s.hasLast || !s.last.Equal(ls)
	s.last = ls
	s.hasLast = true
	s.mu.Unlock()

	if !changed {
		return
	}
	s.logger.Info("link_change",
		zap.Bool("connected", ls.Connected),
		zap.String("type", ls.Type),
		zap.String("internet", domain.TriString(ls.InternetReachable)),
	)
	s.w.emit(ls)
}

// Classify picks the link state from an interface list: connected when
// any non-loopback interface is up and has an address.
func Classify(ifaces gnet.InterfaceStatList) domain.LinkState {
	best := ""
	for _, ifc := range ifaces {
		if !hasFlag(ifc.Flags, "up") || hasFlag(ifc.Flags, "loopback") || len(ifc.Addrs) == 0 {
			continue
		}
		kind := interfaceKind(ifc.Name)
		if best == "" || rank(kind) < rank(best) {
			best = kind
		}
	}
	if best == "" {
		return domain.LinkState{Connected: false, Type: domain.ConnNone}
	}
	return domain.LinkState{Connected: true, Type: best}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

func interfaceKind(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "wl"), strings.HasPrefix(n, "wifi"), strings.Contains(n, "wi-fi"):
		return domain.ConnWiFi
	case strings.HasPrefix(n, "ww"), strings.HasPrefix(n, "rmnet"), strings.HasPrefix(n, "ccmni"), strings.HasPrefix(n, "pdp_ip"):
		return domain.ConnCellular
	case strings.HasPrefix(n, "en"), strings.HasPrefix(n, "eth"):
		return domain.ConnEthernet
	default:
		return domain.ConnUnknown
	}
}

// rank orders link types when several interfaces are up.
func rank(kind string) int {
	switch kind {
	case domain.ConnEthernet:
		return 0
	case domain.ConnWiFi:
		return 1
	case domain.ConnCellular:
		return 2
	default:
		return 3
	}
}
