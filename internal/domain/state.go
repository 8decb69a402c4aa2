package domain

import "fmt"

// State is derived from a NetworkStatus; it is never stored.
type State int

const (
	Offline State = iota
	OnlineUnknown
	OnlineHealthy
	OnlineUnhealthy
)

// Derive maps a status onto a State. probed is false until a probe
// has completed since the link last came up.
func Derive(s NetworkStatus, probed bool) State {
	switch {
	case !s.IsConnected:
		return Offline
	case !probed:
		return OnlineUnknown
	case s.IsServerReachable:
		return OnlineHealthy
	default:
		return OnlineUnhealthy
	}
}

func (s State) String() string {
	switch s {
	case Offline:
		return "offline"
	case OnlineUnknown:
		return "online_unknown"
	case OnlineHealthy:
		return "online_healthy"
	case OnlineUnhealthy:
		return "online_unhealthy"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "offline":
		*s = Offline
	case "online_unknown":
		*s = OnlineUnknown
	case "online_healthy":
		*s = OnlineHealthy
	case "online_unhealthy":
		*s = OnlineUnhealthy
	default:
		return fmt.Errorf("unknown state %q", string(b))
	}
	return nil
}
