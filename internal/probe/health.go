package probe

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultHealthPath = "/actuator/health"
	DefaultTimeout    = 5 * time.Second
)

// HealthProbe checks the application backend's health endpoint.
type HealthProbe struct {
	Logger  *zap.Logger
	Checker Checker
	URL     string
	Timeout time.Duration
}

// NewHealthProbe builds a probe for baseURL+path. Empty path means
// DefaultHealthPath, non-positive timeout means DefaultTimeout.
func NewHealthProbe(logger *zap.Logger, baseURL, path string, timeout time.Duration) *HealthProbe {
	if path == "" {
		path = DefaultHealthPath
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthProbe{
		Logger:  logger,
		Checker: NewHTTPChecker(timeout),
		URL:     joinURL(baseURL, path),
		Timeout: timeout,
	}
}

// CheckServerHealth never fails: timeouts, transport errors and non-2xx
// answers all read as false. The deadline aborts the request itself.
func (p *HealthProbe) CheckServerHealth(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("probe_panic", zap.Any("panic", r), zap.String("url", p.URL))
			ok = false
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	out := p.Checker.Check(cctx, p.URL)
	p.Logger.Debug("probe_checked",
		zap.String("url", p.URL),
		zap.Bool("up", out.Success),
		zap.Int("status", out.StatusCode),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Message),
	)
	return out.Success
}

func joinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
