package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/domain"
)

const statusWriteTimeout = 5 * time.Second

func newUpgrader(origins []string) websocket.Upgrader {
	open := allowsAnyOrigin(origins)
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || open {
				return true
			}
			for _, o := range origins {
				if strings.EqualFold(o, origin) {
					return true
				}
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return strings.EqualFold(strings.TrimSpace(r.Host), strings.TrimSpace(u.Host))
		},
	}
}

func (s *Server) handleStatusWS(origins []string) http.HandlerFunc {
	upgrader := newUpgrader(origins)
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.serveStatusConnection(conn)
	}
}

// serveStatusConnection pushes the current status, then every change.
// A slow client only ever gets the newest snapshot.
func (s *Server) serveStatusConnection(conn *websocket.Conn) {
	defer conn.Close()

	updates := make(chan domain.NetworkStatus, 1)
	unsubscribe := s.Monitor.Subscribe(func(st domain.NetworkStatus) {
		for {
			select {
			case updates <- st:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.Logger.Debug("ws_connected", zap.String("remote", conn.RemoteAddr().String()))
	for {
		select {
		case st := <-updates:
			if err := writeStatusPayload(conn, newStatusResponse(st)); err != nil {
				s.Logger.Debug("ws_write_error", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}

func writeStatusPayload(conn *websocket.Conn, payload statusResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(statusWriteTimeout))
	return conn.WriteJSON(payload)
}
