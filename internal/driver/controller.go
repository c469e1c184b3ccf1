// Package driver runs the driver's shift: online/offline presence, the
// availability poll, and the position report. It never mutates ride state
// itself; all ride effects go through the ride store.
package driver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/internal/rides"
	"github.com/AlokMahapatra26/lastmile-client/pkg/kvstore"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

// RideStore is the slice of the ride store the controller consumes.
type RideStore interface {
	ListAvailableRides(ctx context.Context) error
	Snapshot() rides.State
}

// LocationReporter pushes the driver's position to the backend.
type LocationReporter interface {
	ReportLocation(ctx context.Context, loc models.Location) error
}

// Locator yields the device's current position, the geolocation analog.
type Locator interface {
	Current(ctx context.Context) (models.Location, error)
}

// Config holds the two independent cadences. The location report runs on the
// shorter interval and is independent of ride state.
type Config struct {
	PollInterval     time.Duration
	LocationInterval time.Duration
}

// Controller is the online/offline state machine. The online flag is durable
// per driver identity so a restart mid-shift does not silently drop the
// driver offline.
type Controller struct {
	store     RideStore
	reporter  LocationReporter
	locator   Locator
	flags     kvstore.Store
	scheduler Scheduler
	driverID  string
	cfg       Config

	mu     sync.Mutex
	online bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController wires a controller for one driver identity.
func NewController(store RideStore, reporter LocationReporter, locator Locator, flags kvstore.Store, driverID string, cfg Config) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.LocationInterval <= 0 {
		cfg.LocationInterval = 10 * time.Second
	}
	return &Controller{
		store:     store,
		reporter:  reporter,
		locator:   locator,
		flags:     flags,
		scheduler: TickerScheduler{},
		driverID:  driverID,
		cfg:       cfg,
	}
}

// SetScheduler replaces the ticker scheduler. Tests use this to drive cycles
// by hand.
func (c *Controller) SetScheduler(s Scheduler) {
	c.scheduler = s
}

func (c *Controller) flagKey() string {
	return "driver:online:" + c.driverID
}

// Online reports the controller's presence state.
func (c *Controller) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// GoOnline persists the online flag, fetches offers immediately unless a
// trip is underway, and starts both periodic tasks. Calling it while already
// online changes nothing.
func (c *Controller) GoOnline(ctx context.Context) error {
	c.mu.Lock()
	if c.online {
		c.mu.Unlock()
		return nil
	}
	c.online = true
	taskCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	if err := c.flags.Set(ctx, c.flagKey(), "1", 0); err != nil {
		logger.Warn("driver: failed to persist online flag", zap.Error(err))
	}

	c.pollAvailable(ctx)

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.scheduler.Schedule(taskCtx, c.cfg.PollInterval, c.pollAvailable)
	}()
	go func() {
		defer c.wg.Done()
		c.scheduler.Schedule(taskCtx, c.cfg.LocationInterval, c.reportLocation)
	}()

	logger.Info("driver: online", zap.String("driver_id", c.driverID))
	return nil
}

// GoOffline persists the offline flag and stops both periodic tasks. It does
// not touch any current ride.
func (c *Controller) GoOffline(ctx context.Context) error {
	c.mu.Lock()
	if !c.online {
		c.mu.Unlock()
		return nil
	}
	c.online = false
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()

	if err := c.flags.Delete(ctx, c.flagKey()); err != nil {
		logger.Warn("driver: failed to clear online flag", zap.Error(err))
	}

	logger.Info("driver: offline", zap.String("driver_id", c.driverID))
	return nil
}

// Restore re-enters the persisted presence state after a restart. An active
// current ride forces the controller online regardless of the flag.
func (c *Controller) Restore(ctx context.Context) error {
	_, err := c.flags.Get(ctx, c.flagKey())
	flagged := err == nil

	snap := c.store.Snapshot()
	midTrip := snap.CurrentRide != nil && snap.CurrentRide.Status.IsActive()

	if flagged || midTrip {
		return c.GoOnline(ctx)
	}
	return nil
}

// Close tears the controller down, cancelling timers. Idempotent.
func (c *Controller) Close() {
	_ = c.GoOffline(context.Background())
}

// pollAvailable is one availability cycle. The store already skips the fetch
// entirely while a current active ride exists; a failed cycle is logged and
// the schedule continues.
func (c *Controller) pollAvailable(ctx context.Context) {
	if err := c.store.ListAvailableRides(ctx); err != nil {
		logger.CaptureError(err, "driver: availability poll failed",
			zap.String("driver_id", c.driverID))
	}
}

// reportLocation is one position report cycle, independent of ride state.
func (c *Controller) reportLocation(ctx context.Context) {
	loc, err := c.locator.Current(ctx)
	if err != nil {
		logger.CaptureError(err, "driver: could not acquire position",
			zap.String("driver_id", c.driverID))
		return
	}
	if err := c.reporter.ReportLocation(ctx, loc); err != nil {
		logger.CaptureError(err, "driver: location report failed",
			zap.String("driver_id", c.driverID))
	}
}
