package model

import "time"

// Credentials holds a user's OAuth token for the TickTick integration.
// Refresh is never attempted: a token close to expiry fails the sync closed
// and the user has to reconnect.
type Credentials struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ConnectRequest struct {
	Code string `json:"code" binding:"required"`
}

type IntegrationStatus struct {
	Connected bool       `json:"connected"`
	Expired   bool       `json:"expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
