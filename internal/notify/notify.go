package notify

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/hamed0406/netwatch/internal/banner"
	"github.com/hamed0406/netwatch/internal/domain"
)

// Alert describes one banner change worth telling someone about.
type Alert struct {
	Title    string
	Text     string
	Target   string
	Previous banner.Kind
	Current  banner.Kind
	Status   domain.NetworkStatus
	At       time.Time
}

type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Multi sends to every notifier and returns all errors combined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a Alert) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, a))
	}
	return err
}
