// Package payments reacts to rides entering the awaiting-payment state and
// drives the fare capture flow against the payment collaborator.
package payments

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/internal/rides"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

// RideStore is the slice of the ride store the reactor consumes.
type RideStore interface {
	Snapshot() rides.State
	ListMyRides(ctx context.Context) error
	Subscribe() (<-chan struct{}, func())
}

// Payer executes fare capture for one ride.
type Payer interface {
	Pay(ctx context.Context, ride models.Ride) error
}

// Reactor watches the ride collection and opens the payment flow exactly
// once per closed-to-open transition. States: closed, open(ride).
type Reactor struct {
	store RideStore

	mu      sync.Mutex
	tracked *models.Ride
	onOpen  func(models.Ride)
	onClose func()
}

// NewReactor builds a reactor over the store.
func NewReactor(store RideStore) *Reactor {
	return &Reactor{store: store}
}

// OnOpen registers the prompt-open hook. Must be set before Run.
func (r *Reactor) OnOpen(fn func(models.Ride)) { r.onOpen = fn }

// OnClose registers the prompt-close hook. Must be set before Run.
func (r *Reactor) OnClose(fn func()) { r.onClose = fn }

// Tracked returns the ride the open prompt is for, or nil when closed.
func (r *Reactor) Tracked() *models.Ride {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tracked == nil {
		return nil
	}
	copied := *r.tracked
	return &copied
}

// Run evaluates once, then re-evaluates on every store change until ctx is
// cancelled.
func (r *Reactor) Run(ctx context.Context) {
	changes, cancel := r.store.Subscribe()
	defer cancel()

	r.Evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			r.Evaluate()
		}
	}
}

// Evaluate applies the transition rules against the current snapshot.
func (r *Reactor) Evaluate() {
	snap := r.store.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tracked != nil {
		// A refetch may show the ride finished elsewhere (webhook, second
		// device); close without any local payment.
		for i := range snap.Rides {
			ride := &snap.Rides[i]
			if ride.ID != r.tracked.ID {
				continue
			}
			if ride.Status == models.StatusCompleted || ride.PaymentStatus == models.PaymentPaid {
				r.closeLocked()
			}
			return
		}
		return
	}

	if candidate := qualifying(snap.Rides); candidate != nil {
		copied := *candidate
		r.tracked = &copied
		logger.Info("payments: opening payment prompt", zap.String("ride_id", copied.ID))
		if r.onOpen != nil {
			r.onOpen(copied)
		}
	}
}

// qualifying picks the ride awaiting payment. More than one should not occur
// under the one-active-ride rule; when it does, the most recently created
// wins and the rest stay pending for a later cycle.
func qualifying(list []models.Ride) *models.Ride {
	var best *models.Ride
	for i := range list {
		ride := &list[i]
		if !ride.AwaitingPayment() {
			continue
		}
		if best == nil || ride.CreatedAt.After(best.CreatedAt) {
			best = ride
		}
	}
	return best
}

// Dismiss closes the prompt at the user's request without paying.
func (r *Reactor) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

// CompletePayment runs the payer for the tracked ride, then forces a ride
// refresh before closing so the prompt's end state reflects the server, not
// a stale local copy.
func (r *Reactor) CompletePayment(ctx context.Context, payer Payer) error {
	r.mu.Lock()
	if r.tracked == nil {
		r.mu.Unlock()
		return nil
	}
	ride := *r.tracked
	r.mu.Unlock()

	if err := payer.Pay(ctx, ride); err != nil {
		return err
	}

	if err := r.store.ListMyRides(ctx); err != nil {
		logger.Warn("payments: refresh after payment failed", zap.Error(err))
	}

	r.mu.Lock()
	r.closeLocked()
	r.mu.Unlock()
	return nil
}

func (r *Reactor) closeLocked() {
	if r.tracked == nil {
		return
	}
	logger.Info("payments: closing payment prompt", zap.String("ride_id", r.tracked.ID))
	r.tracked = nil
	if r.onClose != nil {
		r.onClose()
	}
}
