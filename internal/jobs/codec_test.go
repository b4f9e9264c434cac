package jobs

import (
	"errors"
	"testing"
	"time"
)

func testPayload() SendVerificationEmailPayload {
	return SendVerificationEmailPayload{
		UserID:    "user-1",
		Email:     "alice@x.com",
		Username:  "alice",
		Token:     "deadbeef",
		ExpiresAt: time.Now().UTC().Add(time.Hour).Truncate(time.Second),
	}
}

func TestEncodeDecodePayload_RoundTrip(t *testing.T) {
	p := testPayload()

	b, err := EncodePayload(JobSendVerificationEmail, p)

	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	j, err := NewJob(JobSendVerificationEmail, b, time.Time{})

	if err != nil {
		t.Fatalf("new job failed: %v", err)
	}

	if j.Status != JobPending || j.Attempts != 0 || j.Maxtries != 5 {
		t.Fatalf("unexpected job defaults: %+v", j)
	}

	decoded, err := DecodePayload(j)

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	got, ok := decoded.(SendVerificationEmailPayload)

	if !ok {
		t.Fatalf("decoded type = %T, want SendVerificationEmailPayload", decoded)
	}

	if got.UserID != p.UserID || got.Email != p.Email || got.Token != p.Token {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, p)
	}

	if !got.ExpiresAt.Equal(p.ExpiresAt) {
		t.Fatalf("expiry mismatch: got %v want %v", got.ExpiresAt, p.ExpiresAt)
	}
}

func TestEncodePayload_Mismatch(t *testing.T) {
	_, err := EncodePayload(JobSendVerificationEmail, SendPasswordResetEmailPayload{})

	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("err = %v, want ErrPayloadTypeMismatch", err)
	}

	_, err = EncodePayload(JobType("bogus"), testPayload())

	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("err = %v, want ErrInvalidJobType", err)
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want error
	}{
		{name: "bad type", job: Job{Type: "bogus", Payload: []byte("{}")}, want: ErrInvalidJobType},
		{name: "empty payload", job: Job{Type: JobSendVerificationEmail}, want: ErrInvalidJobPayload},
		{name: "broken json", job: Job{Type: JobSendVerificationEmail, Payload: []byte("{nope")}, want: ErrInvalidJobPayload},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodePayload(tc.job)

			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidatePayload(t *testing.T) {
	valid := testPayload()

	missingToken := valid
	missingToken.Token = "  "

	noExpiry := valid
	noExpiry.ExpiresAt = time.Time{}

	tests := []struct {
		name    string
		payload any
		want    error
	}{
		{name: "valid", payload: valid, want: nil},
		{name: "valid pointer", payload: &valid, want: nil},
		{name: "blank token", payload: missingToken, want: ErrInvalidJobPayload},
		{name: "zero expiry", payload: noExpiry, want: ErrInvalidJobPayload},
		{name: "wrong struct", payload: SendPasswordResetEmailPayload{}, want: ErrPayloadTypeMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePayload(JobSendVerificationEmail, tc.payload)

			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
