package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlokMahapatra26/lastmile-client/pkg/common"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

type fakePaymentGateway struct {
	secret string
	err    error
	rideID string
}

func (f *fakePaymentGateway) CreatePaymentIntent(_ context.Context, rideID string) (string, error) {
	f.rideID = rideID
	return f.secret, f.err
}

type fakeStripe struct {
	confirmed []string
	err       error
}

func (f *fakeStripe) ConfirmIntent(_ context.Context, clientSecret string) error {
	f.confirmed = append(f.confirmed, clientSecret)
	return f.err
}

type fakeStatusUpdater struct {
	updates map[string]models.RideStatus
	err     error
}

func (f *fakeStatusUpdater) UpdateRideStatus(_ context.Context, rideID string, status models.RideStatus) error {
	if f.updates == nil {
		f.updates = map[string]models.RideStatus{}
	}
	f.updates[rideID] = status
	return f.err
}

func TestPay_HappyPath(t *testing.T) {
	gw := &fakePaymentGateway{secret: "pi_123_secret_abc"}
	stripe := &fakeStripe{}
	store := &fakeStatusUpdater{}
	client := NewClient(gw, stripe, store)

	err := client.Pay(context.Background(), models.Ride{ID: "r1"})

	require.NoError(t, err)
	assert.Equal(t, "r1", gw.rideID)
	assert.Equal(t, []string{"pi_123_secret_abc"}, stripe.confirmed)
	assert.Equal(t, models.StatusCompleted, store.updates["r1"])
}

func TestPay_IntentCreationFailure(t *testing.T) {
	gw := &fakePaymentGateway{err: common.NewRemoteError(500, "intent service down", nil)}
	stripe := &fakeStripe{}
	client := NewClient(gw, stripe, &fakeStatusUpdater{})

	err := client.Pay(context.Background(), models.Ride{ID: "r1"})

	require.Error(t, err)
	assert.Empty(t, stripe.confirmed, "no confirmation attempt without a secret")
}

func TestPay_DeclinedCard(t *testing.T) {
	gw := &fakePaymentGateway{secret: "pi_123_secret_abc"}
	stripe := &fakeStripe{err: errors.New("card_declined")}
	store := &fakeStatusUpdater{}
	client := NewClient(gw, stripe, store)

	err := client.Pay(context.Background(), models.Ride{ID: "r1"})

	require.Error(t, err)
	assert.Equal(t, "payment was not accepted", common.Message(err))
	assert.Empty(t, store.updates, "no status change for a failed charge")
}

func TestPay_StatusUpdateFailureStillSucceeds(t *testing.T) {
	gw := &fakePaymentGateway{secret: "pi_123_secret_abc"}
	stripe := &fakeStripe{}
	store := &fakeStatusUpdater{err: common.NewNetworkError("request could not complete", nil)}
	client := NewClient(gw, stripe, store)

	err := client.Pay(context.Background(), models.Ride{ID: "r1"})

	assert.NoError(t, err, "the charge went through; bookkeeping reconciles later")
}

func TestIntentIDFromSecret(t *testing.T) {
	tests := []struct {
		secret string
		want   string
	}{
		{"pi_3ABC_secret_xyz", "pi_3ABC"},
		{"pi_plain", "pi_plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntentIDFromSecret(tt.secret))
	}
}
