package notifications

import "context"

type SendVerificationEmailInput struct {
	Email     string
	Username  string
	Token     string
	VerifyURL string
}

type Notifier interface {
	SendVerificationEmail(ctx context.Context, input SendVerificationEmailInput) error
}
