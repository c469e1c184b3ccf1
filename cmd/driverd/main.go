// driverd is a headless driver client: it restores the session, goes online,
// and runs the availability poll, location reports, and rating prompts until
// interrupted. It doubles as the reference wiring for the SDK.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/internal/auth"
	"github.com/AlokMahapatra26/lastmile-client/internal/driver"
	"github.com/AlokMahapatra26/lastmile-client/internal/gateway"
	"github.com/AlokMahapatra26/lastmile-client/internal/ratings"
	"github.com/AlokMahapatra26/lastmile-client/internal/rides"
	"github.com/AlokMahapatra26/lastmile-client/pkg/config"
	"github.com/AlokMahapatra26/lastmile-client/pkg/httpclient"
	"github.com/AlokMahapatra26/lastmile-client/pkg/kvstore"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logging.Environment); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := logger.InitSentry(cfg.Logging.SentryDSN, cfg.Logging.Environment); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}

	flags, err := kvstore.Open(&cfg.Storage)
	if err != nil {
		logger.Get().Fatal("failed to open state store", zap.Error(err))
	}
	defer flags.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var session *auth.Session
	api := httpclient.NewClient(httpclient.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        time.Duration(cfg.API.Timeout) * time.Second,
		BreakerEnabled: cfg.API.BreakerEnabled,
	}, func() string { return session.Token() })
	gw := gateway.New(api)
	session = auth.NewSession(gw, flags)

	restored, err := session.Restore(ctx)
	if err != nil {
		logger.Get().Fatal("failed to restore session", zap.Error(err))
	}
	if !restored {
		email := os.Getenv("LASTMILE_EMAIL")
		password := os.Getenv("LASTMILE_PASSWORD")
		if _, err := session.Login(ctx, email, password); err != nil {
			logger.Get().Fatal("login failed", zap.Error(err))
		}
	}
	if session.Role() != models.UserTypeDriver {
		logger.Get().Fatal("driverd requires a driver account",
			zap.String("role", string(session.Role())))
	}

	store := rides.NewStore(gw, models.UserTypeDriver)
	session.OnLogout(store.Reset)

	if err := store.InitializeDriver(ctx); err != nil {
		logger.Warn("initial ride fetch failed", zap.Error(err))
	}

	controller := driver.NewController(store, gw, envLocator{}, flags, session.ActorID(), driver.Config{
		PollInterval:     cfg.Driver.PollInterval,
		LocationInterval: cfg.Driver.LocationInterval,
	})
	defer controller.Close()

	if err := controller.Restore(ctx); err != nil {
		logger.Warn("presence restore failed", zap.Error(err))
	}
	if !controller.Online() {
		if err := controller.GoOnline(ctx); err != nil {
			logger.Get().Fatal("failed to go online", zap.Error(err))
		}
	}

	tracker := ratings.NewTracker(store, flags, session.ActorID())
	tracker.OnPrompt(func(ride models.Ride) {
		logger.Info("rating due for completed ride",
			zap.String("ride_id", ride.ID),
			zap.String("pickup", ride.PickupAddress),
			zap.String("destination", ride.DestinationAddress))
	})
	go tracker.Run(ctx)

	logger.Info("driverd running",
		zap.String("driver_id", session.ActorID()),
		zap.Duration("poll_interval", cfg.Driver.PollInterval))

	<-ctx.Done()
	logger.Info("driverd shutting down")
}

// envLocator reads a fixed position from the environment; a real deployment
// plugs a GPS-backed Locator in here.
type envLocator struct{}

func (envLocator) Current(context.Context) (models.Location, error) {
	lat, err := strconv.ParseFloat(os.Getenv("DRIVER_LAT"), 64)
	if err != nil {
		return models.Location{}, err
	}
	lng, err := strconv.ParseFloat(os.Getenv("DRIVER_LNG"), 64)
	if err != nil {
		return models.Location{}, err
	}
	return models.Location{Latitude: lat, Longitude: lng}, nil
}
