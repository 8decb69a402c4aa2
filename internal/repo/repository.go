package repo

import (
	"context"
	"time"

	"github.com/hamed0406/netwatch/internal/domain"
)

// Transition is one change of the derived connectivity state.
type Transition struct {
	ID     string               `json:"id"`
	At     time.Time            `json:"at"`
	From   domain.State         `json:"from"`
	To     domain.State         `json:"to"`
	Status domain.NetworkStatus `json:"status"`
}

// Ports (interfaces); process-local adapters only.
type TransitionStore interface {
	Append(ctx context.Context, t *Transition) error
	// List returns up to limit transitions, oldest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Transition, error)
}
