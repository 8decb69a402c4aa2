package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/netwatch/internal/banner"
	"github.com/hamed0406/netwatch/internal/domain"
)

type countingNotifier struct {
	n   int
	err error
}

func (c *countingNotifier) Notify(context.Context, Alert) error {
	c.n++
	return c.err
}

func TestMulti_SendsToAllAndCombinesErrors(t *testing.T) {
	a := &countingNotifier{err: errors.New("a failed")}
	b := &countingNotifier{}
	c := &countingNotifier{err: errors.New("c failed")}

	err := Multi{a, nil, b, c}.Notify(context.Background(), Alert{})
	if a.n != 1 || b.n != 1 || c.n != 1 {
		t.Fatalf("every notifier should be called once: %d %d %d", a.n, b.n, c.n)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("want 2 combined errors, got %d (%v)", got, err)
	}
}

func TestAMQP_NoopWithoutURL(t *testing.T) {
	p, err := NewAMQP("", "", zap.NewNop())
	if err != nil {
		t.Fatalf("NewAMQP: %v", err)
	}
	if p.exchange != DefaultExchange {
		t.Fatalf("want default exchange, got %q", p.exchange)
	}
	if err := p.Notify(context.Background(), Alert{Current: banner.Offline, At: time.Now()}); err != nil {
		t.Fatalf("no-op notify: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewEvent_Shape(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	ev := newEvent(Alert{
		Target:   "https://api.example.com",
		Previous: banner.Hidden,
		Current:  banner.ServerUnreachable,
		Status:   domain.NetworkStatus{IsConnected: true, ConnectionType: domain.ConnWiFi, IsInternetReachable: domain.Tri(true)},
		At:       at,
	})
	if ev.EventID == "" {
		t.Fatalf("event id missing")
	}
	if !ev.Timestamp.Equal(at) || ev.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp should be normalised to UTC, got %v", ev.Timestamp)
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["currentKind"] != "server_unreachable" || m["previousKind"] != "hidden" || m["isInternetReachable"] != true {
		t.Fatalf("unexpected payload %s", b)
	}
}
