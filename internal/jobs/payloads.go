package jobs

import "time"

// SendVerificationEmailPayload carries everything the worker needs to mail
// out a verification link without touching the database.
type SendVerificationEmailPayload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SendPasswordResetEmailPayload is reserved for the reset flow; no producer
// enqueues it yet.
type SendPasswordResetEmailPayload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
