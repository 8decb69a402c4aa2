package domain

import "time"

// Connection types reported by link sources. Diagnostic only.
const (
	ConnWiFi     = "wifi"
	ConnCellular = "cellular"
	ConnEthernet = "ethernet"
	ConnNone     = "none"
	ConnUnknown  = "unknown"
)

// NetworkStatus is an immutable snapshot of what the monitor knows.
// IsInternetReachable is nil when the platform cannot tell. Probed is
// false until a probe has completed since the link last came up; until
// then IsServerReachable is not a probe result.
type NetworkStatus struct {
	IsConnected         bool      `json:"is_connected"`
	IsInternetReachable *bool     `json:"is_internet_reachable"`
	IsServerReachable   bool      `json:"is_server_reachable"`
	Probed              bool      `json:"probed"`
	ConnectionType      string    `json:"connection_type"`
	CheckedAt           time.Time `json:"checked_at"` // zero until the first reading
}

// DefaultStatus is optimistic so no banner shows before the first probe.
func DefaultStatus() NetworkStatus {
	return NetworkStatus{
		IsConnected:       true,
		IsServerReachable: true,
		ConnectionType:    ConnUnknown,
	}
}

// State derives the connectivity state from this snapshot alone.
func (s NetworkStatus) State() State { return Derive(s, s.Probed) }

// Clone returns a copy that shares no memory with s.
func (s NetworkStatus) Clone() NetworkStatus {
	if s.IsInternetReachable != nil {
		v := *s.IsInternetReachable
		s.IsInternetReachable = &v
	}
	return s
}

// LinkState is one passive reading of the device's network link.
type LinkState struct {
	Connected         bool
	InternetReachable *bool
	Type              string
}

// Equal compares link states including the tri-state field.
func (l LinkState) Equal(o LinkState) bool {
	return l.Connected == o.Connected && l.Type == o.Type && TriEqual(l.InternetReachable, o.InternetReachable)
}

// Tri builds a known tri-state value.
func Tri(v bool) *bool { return &v }

// TriEqual reports whether two tri-state values are the same, treating nil as unknown.
func TriEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// TriString renders a tri-state value for logs.
func TriString(v *bool) string {
	switch {
	case v == nil:
		return "unknown"
	case *v:
		return "true"
	default:
		return "false"
	}
}
