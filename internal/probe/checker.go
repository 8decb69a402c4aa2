package probe

import "context"

// CheckResult is the detailed outcome of one HTTP check.
//
// StatusCode is 0 when the request never got a response (transport error,
// timeout, cancelled context).
type CheckResult struct {
	Success    bool
	StatusCode int
	LatencyMS  float64
	Message    string
}

// Checker performs a single check against a target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

// Prober answers the only question the monitor asks: is the backend reachable.
type Prober interface {
	CheckServerHealth(ctx context.Context) bool
}
