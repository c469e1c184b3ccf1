// Package rides holds the client-side source of truth for ride state. All
// reads and mutations of the ride collections go through Store; everything
// else in the client only observes.
package rides

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/pkg/common"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

// GatewayInterface defines the backend calls the store performs.
type GatewayInterface interface {
	CreateRide(ctx context.Context, req *models.CreateRideRequest) (*models.Ride, error)
	MyRides(ctx context.Context, status models.RideStatus) ([]models.Ride, error)
	AvailableRides(ctx context.Context) ([]models.Ride, error)
	AcceptRide(ctx context.Context, rideID string) (*models.Ride, error)
	DeclineRide(ctx context.Context, rideID, reason string) (*models.Ride, error)
	CancelRide(ctx context.Context, rideID, reason string) (*models.Ride, error)
	UpdateRideStatus(ctx context.Context, rideID string, status models.RideStatus) (*models.Ride, error)
	RateRide(ctx context.Context, rideID string, req *models.RateRideRequest) error
}

// State is one consistent view of the ride collections.
type State struct {
	Rides          []models.Ride
	CurrentRide    *models.Ride
	AvailableRides []models.Ride
}

// Store owns the ride collections for one session. A single mutex guards all
// state; each resolved request is applied as one atomic replace, so observers
// never see a half-applied update. Overlapping calls are not serialized
// against each other — the last response to resolve wins.
type Store struct {
	gw       GatewayInterface
	role     models.UserType
	validate *validator.Validate

	mu       sync.Mutex
	state    State
	inFlight int
	subs     map[int]chan struct{}
	nextSub  int
}

// NewStore creates a store for the given acting role.
func NewStore(gw GatewayInterface, role models.UserType) *Store {
	return &Store{
		gw:       gw,
		role:     role,
		validate: validator.New(),
		subs:     make(map[int]chan struct{}),
	}
}

// Snapshot returns a copy of the current state. The returned slices and ride
// are the caller's to keep.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

// IsLoading reports whether any store call is in flight. It is coarse: a UI
// must still disable duplicate-triggering controls per action.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Subscribe returns a channel signaled after every committed state change,
// plus a cancel function. The channel is buffered; a slow observer sees a
// coalesced signal rather than a backlog.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// CreateRide requests a new ride. The created ride is prepended to the
// history and becomes the rider's current ride. No local state changes on
// failure.
func (s *Store) CreateRide(ctx context.Context, req *models.CreateRideRequest) (*models.Ride, error) {
	if req.PickupAddress == "" || req.DestinationAddress == "" {
		return nil, common.NewValidationError("pickup and destination are required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, common.NewValidationError("invalid ride request: " + err.Error())
	}

	s.beginCall()
	ride, err := s.gw.CreateRide(ctx, req)
	s.endCall()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Rides = prepend(s.state.Rides, *ride)
	s.setCurrentLocked(ride)
	s.mu.Unlock()
	s.notify()

	return ride, nil
}

// ListMyRides replaces the ride history from the backend and recomputes the
// current ride. Prior state is left intact on failure.
func (s *Store) ListMyRides(ctx context.Context) error {
	s.beginCall()
	fetched, err := s.gw.MyRides(ctx, "")
	s.endCall()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Rides = fetched
	s.recomputeCurrentLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// ListAvailableRides replaces the driver's offer list. It is a deliberate
// no-op while a current active ride exists: the list must never contain a
// ride the driver cannot act on, and a mid-trip driver cannot act on any.
func (s *Store) ListAvailableRides(ctx context.Context) error {
	s.mu.Lock()
	if cur := s.state.CurrentRide; cur != nil && cur.Status.IsActive() {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.beginCall()
	fetched, err := s.gw.AvailableRides(ctx)
	s.endCall()
	if err != nil {
		return err
	}

	s.mu.Lock()
	// Re-check at commit time: an accept may have resolved while this fetch
	// was in flight, and a mid-trip driver must not see offers.
	if cur := s.state.CurrentRide; cur != nil && cur.Status.IsActive() {
		s.mu.Unlock()
		return nil
	}
	s.state.AvailableRides = fetched
	s.mu.Unlock()
	s.notify()
	return nil
}

// InitializeDriver primes a driver session after login or reload: fetch the
// ride history, derive the current ride, and only then fetch offers (which
// no-ops when a trip is already underway).
func (s *Store) InitializeDriver(ctx context.Context) error {
	if err := s.ListMyRides(ctx); err != nil {
		return err
	}
	return s.ListAvailableRides(ctx)
}

// AcceptRide claims an offered ride. A conflict from the backend (another
// driver won the race) is surfaced unchanged and leaves local state alone.
func (s *Store) AcceptRide(ctx context.Context, rideID string) error {
	s.beginCall()
	ride, err := s.gw.AcceptRide(ctx, rideID)
	s.endCall()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.AvailableRides = removeByID(s.state.AvailableRides, rideID)
	s.state.Rides = prepend(removeByID(s.state.Rides, rideID), *ride)
	s.setCurrentLocked(ride)
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeclineRide declines an offered ride as the driver. A reason is mandatory.
func (s *Store) DeclineRide(ctx context.Context, rideID, reason string) error {
	return s.terminate(ctx, rideID, reason, s.gw.DeclineRide)
}

// CancelRide cancels a ride as the rider. A reason is mandatory.
func (s *Store) CancelRide(ctx context.Context, rideID, reason string) error {
	return s.terminate(ctx, rideID, reason, s.gw.CancelRide)
}

// terminate implements the shared local effects of decline and cancel; the
// two stay separate operations because the backend treats them as distinct
// endpoints with role-specific failure semantics.
func (s *Store) terminate(ctx context.Context, rideID, reason string, call func(context.Context, string, string) (*models.Ride, error)) error {
	if strings.TrimSpace(reason) == "" {
		return common.NewValidationError("a reason is required")
	}

	s.beginCall()
	ride, err := call(ctx, rideID, reason)
	s.endCall()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.AvailableRides = removeByID(s.state.AvailableRides, rideID)
	s.state.Rides = upsert(s.state.Rides, *ride)
	if cur := s.state.CurrentRide; cur != nil && cur.ID == rideID {
		s.state.CurrentRide = nil
	}
	s.mu.Unlock()
	s.notify()

	s.refreshAvailable(ctx)
	return nil
}

// UpdateRideStatus advances a ride's lifecycle. Out-of-order transitions are
// rejected before any network call; the server remains authoritative for
// everything the client cannot see.
func (s *Store) UpdateRideStatus(ctx context.Context, rideID string, next models.RideStatus) error {
	if known := s.findRide(rideID); known != nil && !known.Status.CanTransition(next) {
		return common.NewValidationError(
			"cannot move ride from " + string(known.Status) + " to " + string(next))
	}

	s.beginCall()
	ride, err := s.gw.UpdateRideStatus(ctx, rideID, next)
	s.endCall()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Rides = upsert(s.state.Rides, *ride)
	if ride.Status.IsTerminal() {
		// Clear by identity, not by cached status: the local copy may be
		// stale.
		if cur := s.state.CurrentRide; cur != nil && cur.ID == rideID {
			s.state.CurrentRide = nil
		}
	} else if cur := s.state.CurrentRide; cur != nil && cur.ID == rideID {
		s.setCurrentLocked(ride)
	}
	s.mu.Unlock()
	s.notify()

	if ride.Status.IsTerminal() {
		s.refreshAvailable(ctx)
	}
	return nil
}

// SubmitRating submits a rating for the acting role. The store applies no
// optimistic patch; callers refetch the affected collections so local state
// cannot drift from the server's.
func (s *Store) SubmitRating(ctx context.Context, rideID string, rating int, review string) error {
	req := &models.RateRideRequest{Rating: rating, Review: review}
	if err := s.validate.Struct(req); err != nil {
		return common.NewValidationError("invalid rating: " + err.Error())
	}

	s.beginCall()
	err := s.gw.RateRide(ctx, rideID, req)
	s.endCall()
	return err
}

// Reset evicts all in-memory collections. Called on logout; the client never
// deletes ride records server-side.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	s.notify()
}

// Role returns the acting role this store was built for.
func (s *Store) Role() models.UserType {
	return s.role
}

// refreshAvailable re-triggers the availability fetch after a mutation that
// may change offer visibility. Consistency rule, not an optimization; a
// failure here is logged and does not fail the mutation that succeeded.
func (s *Store) refreshAvailable(ctx context.Context) {
	if s.role != models.UserTypeDriver {
		return
	}
	if err := s.ListAvailableRides(ctx); err != nil {
		logger.Warn("rides: availability refresh after mutation failed", zap.Error(err))
	}
}

// setCurrentLocked installs ride as the current ride, guarded by the
// one-active-ride rule so a late response for a superseded request cannot
// resurrect a finished ride.
func (s *Store) setCurrentLocked(ride *models.Ride) {
	if ride == nil || !s.currentCandidate(ride.Status) {
		return
	}
	copied := *ride
	s.state.CurrentRide = &copied
}

// currentCandidate reports whether a ride in this status may occupy the
// current slot. A rider's own fresh request is current for them; it is never
// current for a driver.
func (s *Store) currentCandidate(status models.RideStatus) bool {
	if status.IsActive() {
		return true
	}
	return s.role == models.UserTypeRider && status == models.StatusRequested
}

// recomputeCurrentLocked derives the current ride from a freshly replaced
// history: the most recent ride in an active pre-payment state wins, else the
// prior current ride survives only if the refreshed list still carries it.
func (s *Store) recomputeCurrentLocked() {
	for i := range s.state.Rides {
		switch s.state.Rides[i].Status {
		case models.StatusAccepted, models.StatusPickedUp, models.StatusInProgress:
			s.setCurrentLocked(&s.state.Rides[i])
			return
		}
	}

	if cur := s.state.CurrentRide; cur != nil {
		for i := range s.state.Rides {
			if s.state.Rides[i].ID == cur.ID {
				s.setCurrentLocked(&s.state.Rides[i])
				if s.state.Rides[i].Status.IsTerminal() {
					s.state.CurrentRide = nil
				}
				return
			}
		}
		s.state.CurrentRide = nil
	}
}

func (s *Store) findRide(rideID string) *models.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.state.CurrentRide; cur != nil && cur.ID == rideID {
		copied := *cur
		return &copied
	}
	for i := range s.state.Rides {
		if s.state.Rides[i].ID == rideID {
			copied := s.state.Rides[i]
			return &copied
		}
	}
	for i := range s.state.AvailableRides {
		if s.state.AvailableRides[i].ID == rideID {
			copied := s.state.AvailableRides[i]
			return &copied
		}
	}
	return nil
}

func (s *Store) beginCall() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
}

func (s *Store) endCall() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Store) copyStateLocked() State {
	out := State{
		Rides:          append([]models.Ride(nil), s.state.Rides...),
		AvailableRides: append([]models.Ride(nil), s.state.AvailableRides...),
	}
	if s.state.CurrentRide != nil {
		copied := *s.state.CurrentRide
		out.CurrentRide = &copied
	}
	return out
}

func prepend(rides []models.Ride, ride models.Ride) []models.Ride {
	return append([]models.Ride{ride}, rides...)
}

func removeByID(rides []models.Ride, rideID string) []models.Ride {
	out := rides[:0]
	for _, r := range rides {
		if r.ID != rideID {
			out = append(out, r)
		}
	}
	return out
}

func upsert(rides []models.Ride, ride models.Ride) []models.Ride {
	for i := range rides {
		if rides[i].ID == ride.ID {
			rides[i] = ride
			return rides
		}
	}
	return prepend(rides, ride)
}
