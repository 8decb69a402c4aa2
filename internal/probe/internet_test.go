package probe

import (
	"context"
	"errors"
	"net"
	"testing"
)

type fakeResolver struct {
	ips []net.IP
	err error
}

func (f fakeResolver) LookupIP(context.Context, string, string) ([]net.IP, error) {
	return f.ips, f.err
}

func TestInternetChecker_Classes(t *testing.T) {
	cases := []struct {
		name string
		host string
		res  fakeResolver
		want string
		tri  string
	}{
		{"resolves", "example.com", fakeResolver{ips: []net.IP{net.IPv4(93, 184, 216, 34)}}, DNSResolves, "true"},
		{"nxdomain", "example.com", fakeResolver{err: &net.DNSError{Err: "no such host", IsNotFound: true}}, DNSNXDomain, "false"},
		{"timeout", "example.com", fakeResolver{err: &net.DNSError{Err: "i/o timeout", IsTimeout: true}}, DNSFailOrTimeout, "false"},
		{"other error", "example.com", fakeResolver{err: errors.New("network unreachable")}, DNSFailOrTimeout, "false"},
		{"empty host", "", fakeResolver{}, DNSInvalidName, "unknown"},
		{"url not host", "https://example.com", fakeResolver{}, DNSInvalidName, "unknown"},
	}
	for _, c := range cases {
		chk := NewInternetChecker(c.host)
		chk.Resolver = c.res
		if got := chk.Classify(context.Background()); got != c.want {
			t.Fatalf("%s: Classify=%s want %s", c.name, got, c.want)
		}
		got := chk.Reachable(context.Background())
		var s string
		switch {
		case got == nil:
			s = "unknown"
		case *got:
			s = "true"
		default:
			s = "false"
		}
		if s != c.tri {
			t.Fatalf("%s: Reachable=%s want %s", c.name, s, c.tri)
		}
	}
}
