package models

import "time"

// UserType is the acting role of the session.
type UserType string

const (
	UserTypeRider  UserType = "rider"
	UserTypeDriver UserType = "driver"
)

// User is the authenticated account.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	PhoneNumber      string    `json:"phone_number"`
	UserType         UserType  `json:"user_type"`
	CurrentLatitude  *float64  `json:"current_latitude,omitempty"`
	CurrentLongitude *float64  `json:"current_longitude,omitempty"`
	IsActive         bool      `json:"is_active"`
	AverageRating    float64   `json:"average_rating"`
	TotalRatings     int       `json:"total_ratings"`
	CreatedAt        time.Time `json:"created_at"`
}

// Location is a reported coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	PhoneNumber string   `json:"phone_number" validate:"required"`
	UserType    UserType `json:"user_type" validate:"required,oneof=rider driver"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
