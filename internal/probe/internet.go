package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNS outcome classes.
const (
	DNSResolves      = "RESOLVES"
	DNSNXDomain      = "NXDOMAIN"
	DNSFailOrTimeout = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName   = "INVALID_NAME"
)

var dnsTimeout = 3 * time.Second

// Resolver is the subset of *net.Resolver used here.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// InternetChecker guesses general internet egress by resolving a
// well-known name. It fills in reachability where the link source
// cannot tell.
type InternetChecker struct {
	Host     string
	Resolver Resolver
	Timeout  time.Duration
}

func NewInternetChecker(host string) *InternetChecker {
	return &InternetChecker{
		Host:     strings.TrimSpace(host),
		Resolver: &net.Resolver{}, // OS resolver
		Timeout:  dnsTimeout,
	}
}

// Classify resolves the configured host and returns a DNS outcome class.
func (c *InternetChecker) Classify(ctx context.Context) string {
	host := c.Host
	if host == "" || strings.Contains(host, "://") {
		return DNSInvalidName
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = dnsTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ips, err := c.Resolver.LookupIP(cctx, "ip", host)
	if err == nil && len(ips) > 0 {
		return DNSResolves
	}
	var de *net.DNSError
	if errors.As(err, &de) && de.IsNotFound {
		return DNSNXDomain
	}
	return DNSFailOrTimeout
}

// Reachable maps the DNS class onto a tri-state answer.
// An invalid or unset host yields nil (unknown).
func (c *InternetChecker) Reachable(ctx context.Context) *bool {
	class := c.Classify(ctx)
	if class == DNSInvalidName {
		return nil
	}
	v := class == DNSResolves
	return &v
}
