// Package banner maps a NetworkStatus onto what a connectivity banner
// should show.
package banner

import "github.com/hamed0406/netwatch/internal/domain"

type Kind string

const (
	Hidden            Kind = "hidden"
	Offline           Kind = "offline"
	ServerUnreachable Kind = "server_unreachable"
)

// View is everything a front end needs to draw the banner. Retry means
// the banner offers a control wired to Monitor.Refresh.
type View struct {
	Visible bool   `json:"visible"`
	Kind    Kind   `json:"kind"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Color   string `json:"color,omitempty"`
	Retry   bool   `json:"retry"`
}

// KindOf follows the derived state. A link that just came up and has no
// health result yet stays hidden.
func KindOf(s domain.NetworkStatus) Kind {
	switch s.State() {
	case domain.Offline:
		return Offline
	case domain.OnlineUnhealthy:
		return ServerUnreachable
	default:
		return Hidden
	}
}

func Render(s domain.NetworkStatus) View {
	switch KindOf(s) {
	case Offline:
		return View{
			Visible: true,
			Kind:    Offline,
			Title:   "No internet connection",
			Message: "Check your Wi-Fi or mobile data and try again.",
			Color:   "#D32F2F",
			Retry:   true,
		}
	case ServerUnreachable:
		return View{
			Visible: true,
			Kind:    ServerUnreachable,
			Title:   "Can't reach the server",
			Message: "You're online, but our servers aren't responding. We'll keep trying.",
			Color:   "#F57C00",
			Retry:   true,
		}
	default:
		return View{Kind: Hidden}
	}
}

// Down reports whether k is a failure banner.
func (k Kind) Down() bool { return k == Offline || k == ServerUnreachable }
