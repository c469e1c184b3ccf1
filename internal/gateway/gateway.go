// Package gateway is the typed client for the lastmile REST surface. It owns
// paths and response envelopes; all transport and error normalization lives
// in pkg/httpclient.
package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/AlokMahapatra26/lastmile-client/pkg/httpclient"
	"github.com/AlokMahapatra26/lastmile-client/pkg/models"
)

// Client calls the backend API.
type Client struct {
	api *httpclient.Client
}

// New wraps an HTTP client.
func New(api *httpclient.Client) *Client {
	return &Client{api: api}
}

type rideEnvelope struct {
	Ride models.Ride `json:"ride"`
}

type ridesEnvelope struct {
	Rides []models.Ride `json:"rides"`
}

// CreateRide requests a new ride; the server answers with status requested.
func (c *Client) CreateRide(ctx context.Context, req *models.CreateRideRequest) (*models.Ride, error) {
	var resp rideEnvelope
	if err := c.api.Post(ctx, "/rides", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Ride, nil
}

// MyRides lists rides owned by the acting user, optionally filtered by
// status.
func (c *Client) MyRides(ctx context.Context, status models.RideStatus) ([]models.Ride, error) {
	path := "/rides/mine"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var resp ridesEnvelope
	if err := c.api.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

// AvailableRides lists unclaimed requested rides visible to a driver.
func (c *Client) AvailableRides(ctx context.Context) ([]models.Ride, error) {
	var resp ridesEnvelope
	if err := c.api.Get(ctx, "/rides/available", &resp); err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

// AcceptRide claims a ride for the acting driver. The backend answers 409
// when another driver got there first.
func (c *Client) AcceptRide(ctx context.Context, rideID string) (*models.Ride, error) {
	var resp rideEnvelope
	if err := c.api.Post(ctx, "/rides/"+rideID+"/accept", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Ride, nil
}

type reasonBody struct {
	Reason string `json:"reason"`
}

// DeclineRide declines a ride as the driver.
func (c *Client) DeclineRide(ctx context.Context, rideID, reason string) (*models.Ride, error) {
	var resp rideEnvelope
	if err := c.api.Post(ctx, "/rides/"+rideID+"/decline", reasonBody{Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return &resp.Ride, nil
}

// CancelRide cancels a ride as the rider.
func (c *Client) CancelRide(ctx context.Context, rideID, reason string) (*models.Ride, error) {
	var resp rideEnvelope
	if err := c.api.Post(ctx, "/rides/"+rideID+"/cancel", reasonBody{Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return &resp.Ride, nil
}

type statusBody struct {
	Status models.RideStatus `json:"status"`
}

// UpdateRideStatus advances the lifecycle state.
func (c *Client) UpdateRideStatus(ctx context.Context, rideID string, status models.RideStatus) (*models.Ride, error) {
	var resp rideEnvelope
	if err := c.api.Put(ctx, "/rides/"+rideID+"/status", statusBody{Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp.Ride, nil
}

// RateRide submits a rating and review for the acting role.
func (c *Client) RateRide(ctx context.Context, rideID string, req *models.RateRideRequest) error {
	return c.api.Post(ctx, "/rides/"+rideID+"/rate", req, nil)
}

// ReportLocation pushes the driver's current position.
func (c *Client) ReportLocation(ctx context.Context, loc models.Location) error {
	return c.api.Put(ctx, "/users/location", loc, nil)
}

// DriverStats fetches aggregated earnings, optionally windowed. Dates use
// the backend's 2006-01-02 form.
func (c *Client) DriverStats(ctx context.Context, startDate, endDate *time.Time) (*models.DriverStats, error) {
	path := "/drivers/stats"
	query := url.Values{}
	if startDate != nil {
		query.Set("startDate", startDate.Format("2006-01-02"))
	}
	if endDate != nil {
		query.Set("endDate", endDate.Format("2006-01-02"))
	}
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var stats models.DriverStats
	if err := c.api.Get(ctx, path, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a session.
func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.api.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile patches the account record.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]interface{}) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.api.Put(ctx, "/users/profile", fields, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

type intentBody struct {
	RideID string `json:"ride_id"`
}

// CreatePaymentIntent asks the backend for a payment collaborator client
// secret for the ride's fare.
func (c *Client) CreatePaymentIntent(ctx context.Context, rideID string) (string, error) {
	var resp struct {
		ClientSecret string `json:"client_secret"`
	}
	if err := c.api.Post(ctx, "/payments/intent", intentBody{RideID: rideID}, &resp); err != nil {
		return "", err
	}
	if resp.ClientSecret == "" {
		return "", fmt.Errorf("gateway: empty client secret for ride %s", rideID)
	}
	return resp.ClientSecret, nil
}
