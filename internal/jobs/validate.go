package jobs

import "strings"

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidatePayload checks a decoded payload carries the fields the worker
// relies on before it touches the notifier.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	switch t {
	case JobSendVerificationEmail:
		p, ok := as[SendVerificationEmailPayload](payload)

		if !ok {
			return ErrPayloadTypeMismatch
		}

		if blank(p.UserID) || blank(p.Email) || blank(p.Token) || p.ExpiresAt.IsZero() {
			return ErrInvalidJobPayload
		}

		return nil

	case JobSendPasswordResetEmail:
		p, ok := as[SendPasswordResetEmailPayload](payload)

		if !ok {
			return ErrPayloadTypeMismatch
		}

		if blank(p.UserID) || blank(p.Email) || blank(p.Token) {
			return ErrInvalidJobPayload
		}

		return nil
	}

	return ErrInvalidJobType
}
