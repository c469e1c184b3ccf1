package payments

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/pkg/common"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

// GatewayInterface is the backend slice the payment client needs.
type GatewayInterface interface {
	CreatePaymentIntent(ctx context.Context, rideID string) (string, error)
}

// StripeClientInterface confirms a payment intent with the collaborator,
// given the server-issued client secret.
type StripeClientInterface interface {
	ConfirmIntent(ctx context.Context, clientSecret string) error
}

// StatusUpdater advances the ride after capture succeeds.
type StatusUpdater interface {
	UpdateRideStatus(ctx context.Context, rideID string, status models.RideStatus) error
}

// Client executes the fare capture flow: obtain the client secret from our
// backend, confirm with the collaborator, then mark the ride completed. The
// final status update stands in for the capture webhook the backend does not
// deliver to clients.
type Client struct {
	gateway GatewayInterface
	stripe  StripeClientInterface
	store   StatusUpdater
}

// NewClient wires a payment client.
func NewClient(gateway GatewayInterface, stripe StripeClientInterface, store StatusUpdater) *Client {
	return &Client{gateway: gateway, stripe: stripe, store: store}
}

// Pay captures the fare for one ride.
func (c *Client) Pay(ctx context.Context, ride models.Ride) error {
	secret, err := c.gateway.CreatePaymentIntent(ctx, ride.ID)
	if err != nil {
		return err
	}

	if err := c.stripe.ConfirmIntent(ctx, secret); err != nil {
		logger.Error("payments: confirmation failed",
			zap.String("ride_id", ride.ID), zap.Error(err))
		return common.NewRemoteError(402, "payment was not accepted", err)
	}

	if err := c.store.UpdateRideStatus(ctx, ride.ID, models.StatusCompleted); err != nil {
		// The charge went through; only the bookkeeping call failed. The
		// next poll reconciles, so report success and log.
		logger.Warn("payments: status update after capture failed",
			zap.String("ride_id", ride.ID), zap.Error(err))
	}

	logger.Info("payments: fare captured", zap.String("ride_id", ride.ID))
	return nil
}

// IntentIDFromSecret extracts the payment intent ID from a client secret of
// the form pi_..._secret_....
func IntentIDFromSecret(clientSecret string) string {
	if idx := strings.Index(clientSecret, "_secret"); idx > 0 {
		return clientSecret[:idx]
	}
	return clientSecret
}
