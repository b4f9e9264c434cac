package jobs

type JobType string

const (
	JobSendVerificationEmail JobType = "send_verification_email"

	// reserved for the password reset flow
	JobSendPasswordResetEmail JobType = "send_password_reset_email"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobSendVerificationEmail, JobSendPasswordResetEmail:
		return true
	}

	return false
}
