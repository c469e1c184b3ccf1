// Package ratings surfaces completed rides the acting role has not rated
// yet, one prompt at a time, and remembers which rides were already handled
// so a prompt never reappears.
package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/internal/rides"
	"github.com/AlokMahapatra26/lastmile-client/pkg/kvstore"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

// RideStore is the slice of the ride store the tracker consumes.
type RideStore interface {
	Snapshot() rides.State
	ListMyRides(ctx context.Context) error
	SubmitRating(ctx context.Context, rideID string, rating int, review string) error
	Subscribe() (<-chan struct{}, func())
	Role() models.UserType
}

// Tracker watches completed rides and prompts for the single most recent
// unrated one. The resolved set (submitted or dismissed) is durable per
// role and user.
type Tracker struct {
	store  RideStore
	flags  kvstore.Store
	userID string

	mu       sync.Mutex
	resolved map[string]bool
	prompt   *models.Ride
	onPrompt func(models.Ride)
	onClose  func()
}

// NewTracker builds a tracker for the acting user.
func NewTracker(store RideStore, flags kvstore.Store, userID string) *Tracker {
	return &Tracker{
		store:    store,
		flags:    flags,
		userID:   userID,
		resolved: make(map[string]bool),
	}
}

// OnPrompt registers the prompt-open hook. Must be set before Run.
func (t *Tracker) OnPrompt(fn func(models.Ride)) { t.onPrompt = fn }

// OnClose registers the prompt-close hook. Must be set before Run.
func (t *Tracker) OnClose(fn func()) { t.onClose = fn }

func (t *Tracker) resolvedKey() string {
	return "ratings:resolved:" + string(t.store.Role()) + ":" + t.userID
}

// Load restores the resolved set from durable storage.
func (t *Tracker) Load(ctx context.Context) error {
	raw, err := t.flags.Get(ctx, t.resolvedKey())
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return err
	}

	t.mu.Lock()
	for _, id := range ids {
		t.resolved[id] = true
	}
	t.mu.Unlock()
	return nil
}

// Run loads the resolved set, evaluates once, then re-evaluates on every
// store change until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	if err := t.Load(ctx); err != nil {
		logger.Warn("ratings: failed to load resolved set", zap.Error(err))
	}

	changes, cancel := t.store.Subscribe()
	defer cancel()

	t.Evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			t.Evaluate()
		}
	}
}

// Prompted returns the ride currently awaiting a rating prompt, or nil.
func (t *Tracker) Prompted() *models.Ride {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.prompt == nil {
		return nil
	}
	copied := *t.prompt
	return &copied
}

// Evaluate surfaces the most recent completed, unresolved, unrated ride when
// no prompt is already displayed.
func (t *Tracker) Evaluate() {
	snap := t.store.Snapshot()
	role := t.store.Role()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.prompt != nil {
		return
	}

	candidates := make([]models.Ride, 0, len(snap.Rides))
	for _, ride := range snap.Rides {
		if ride.Status != models.StatusCompleted {
			continue
		}
		if t.resolved[ride.ID] || ride.RatedBy(role) {
			continue
		}
		candidates = append(candidates, ride)
	}
	if len(candidates) == 0 {
		return
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	copied := candidates[0]
	t.prompt = &copied
	logger.Info("ratings: prompting for ride", zap.String("ride_id", copied.ID))
	if t.onPrompt != nil {
		t.onPrompt(copied)
	}
}

// Submit rates the prompted ride, marks it resolved, closes the prompt, and
// refreshes the history so the next unrated ride can surface on a later
// cycle.
func (t *Tracker) Submit(ctx context.Context, rating int, review string) error {
	t.mu.Lock()
	if t.prompt == nil {
		t.mu.Unlock()
		return nil
	}
	rideID := t.prompt.ID
	t.mu.Unlock()

	if err := t.store.SubmitRating(ctx, rideID, rating, review); err != nil {
		return err
	}

	t.resolve(ctx, rideID)

	if err := t.store.ListMyRides(ctx); err != nil {
		logger.Warn("ratings: refresh after rating failed", zap.Error(err))
	}
	return nil
}

// Dismiss marks the prompted ride resolved without rating it. A dismissed
// prompt never reappears for the same ride.
func (t *Tracker) Dismiss(ctx context.Context) {
	t.mu.Lock()
	if t.prompt == nil {
		t.mu.Unlock()
		return
	}
	rideID := t.prompt.ID
	t.mu.Unlock()

	t.resolve(ctx, rideID)
}

func (t *Tracker) resolve(ctx context.Context, rideID string) {
	t.mu.Lock()
	t.resolved[rideID] = true
	ids := make([]string, 0, len(t.resolved))
	for id := range t.resolved {
		ids = append(ids, id)
	}
	t.prompt = nil
	t.mu.Unlock()

	sort.Strings(ids)
	encoded, _ := json.Marshal(ids)
	if err := t.flags.Set(ctx, t.resolvedKey(), string(encoded), 0); err != nil {
		logger.Warn("ratings: failed to persist resolved set", zap.Error(err))
	}

	if t.onClose != nil {
		t.onClose()
	}
}
