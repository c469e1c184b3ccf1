package models

import "time"

// RideStatus is a ride lifecycle state. The lifecycle is an ordered
// progression; cancellation is only reachable from the early states.
type RideStatus string

const (
	StatusRequested       RideStatus = "requested"
	StatusAccepted        RideStatus = "accepted"
	StatusPickedUp        RideStatus = "picked_up"
	StatusInProgress      RideStatus = "in_progress"
	StatusAwaitingPayment RideStatus = "awaiting_payment"
	StatusCompleted       RideStatus = "completed"
	StatusCancelled       RideStatus = "cancelled"
)

// PaymentStatus is the fare capture state of a ride.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// forwardTransitions is the client-side fast-fail table. The server remains
// authoritative; this only rejects obviously out-of-order updates before a
// round trip.
var forwardTransitions = map[RideStatus][]RideStatus{
	StatusRequested:       {StatusAccepted, StatusCancelled},
	StatusAccepted:        {StatusPickedUp, StatusCancelled},
	StatusPickedUp:        {StatusInProgress},
	StatusInProgress:      {StatusAwaitingPayment, StatusCompleted},
	StatusAwaitingPayment: {StatusCompleted},
}

// CanTransition reports whether next is a valid forward transition from s.
func (s RideStatus) CanTransition(next RideStatus) bool {
	for _, allowed := range forwardTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether a ride in this status counts as the session's
// current ride.
func (s RideStatus) IsActive() bool {
	switch s {
	case StatusAccepted, StatusPickedUp, StatusInProgress, StatusAwaitingPayment:
		return true
	}
	return false
}

// IsTerminal reports whether the lifecycle has ended.
func (s RideStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PartySnapshot is the denormalized rider/driver display info as of the last
// fetch.
type PartySnapshot struct {
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	PhoneNumber   string   `json:"phone_number"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	TotalRatings  *int     `json:"total_ratings,omitempty"`
}

// Ride is the central entity, mirrored from the backend ride resource.
type Ride struct {
	ID       string  `json:"id"`
	RiderID  string  `json:"rider_id"`
	DriverID *string `json:"driver_id,omitempty"`

	PickupLatitude       float64 `json:"pickup_latitude"`
	PickupLongitude      float64 `json:"pickup_longitude"`
	PickupAddress        string  `json:"pickup_address"`
	DestinationLatitude  float64 `json:"destination_latitude"`
	DestinationLongitude float64 `json:"destination_longitude"`
	DestinationAddress   string  `json:"destination_address"`

	Status RideStatus `json:"status"`

	// Fares are integer minor currency units (paise). FinalFare is only
	// defined once the ride reaches completed.
	EstimatedFare   int64         `json:"estimated_fare"`
	FinalFare       *int64        `json:"final_fare,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentIntentID *string       `json:"payment_intent_id,omitempty"`

	RideType string `json:"ride_type"`

	RatedByRider  bool    `json:"rated_by_rider"`
	RatedByDriver bool    `json:"rated_by_driver"`
	RiderRating   *int    `json:"rider_rating,omitempty"`
	DriverRating  *int    `json:"driver_rating,omitempty"`
	RiderReview   *string `json:"rider_review,omitempty"`
	DriverReview  *string `json:"driver_review,omitempty"`

	// Present only when Status is cancelled.
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	Rider  *PartySnapshot `json:"rider,omitempty"`
	Driver *PartySnapshot `json:"driver,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// AwaitingPayment reports whether the ride currently needs fare capture.
func (r *Ride) AwaitingPayment() bool {
	return r.Status == StatusAwaitingPayment && r.PaymentStatus == PaymentPending
}

// RatedBy reports whether the given role has already rated this ride.
func (r *Ride) RatedBy(role UserType) bool {
	if role == UserTypeDriver {
		return r.RatedByDriver
	}
	return r.RatedByRider
}

// CreateRideRequest is the payload for requesting a new ride.
type CreateRideRequest struct {
	PickupLatitude       float64 `json:"pickup_latitude" validate:"required,latitude"`
	PickupLongitude      float64 `json:"pickup_longitude" validate:"required,longitude"`
	PickupAddress        string  `json:"pickup_address" validate:"required"`
	DestinationLatitude  float64 `json:"destination_latitude" validate:"required,latitude"`
	DestinationLongitude float64 `json:"destination_longitude" validate:"required,longitude"`
	DestinationAddress   string  `json:"destination_address" validate:"required"`
	RideType             string  `json:"ride_type" validate:"omitempty,oneof=standard premium shared"`
}

// RateRideRequest is the payload for submitting a rating.
type RateRideRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}
