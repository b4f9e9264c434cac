package user

import "time"

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	IsVerified   bool   `json:"isVerified"`
	IsAdmin      bool   `json:"isAdmin"`

	// single-use credentials; nil when no token is pending
	VerifyToken       *string    `json:"-"`
	VerifyTokenExpiry *time.Time `json:"-"`

	// reserved for the password-reset flow; no route touches these yet
	ForgotPasswordToken       *string    `json:"-"`
	ForgotPasswordTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicProfile is the shape embedded in login responses and session claims.
type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
