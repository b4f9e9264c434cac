package jobs

import (
	"encoding/json"
	"fmt"
)

// as accepts the payload either by value or by pointer.
func as[T any](payload any) (T, bool) {
	if v, ok := payload.(T); ok {
		return v, true
	}

	if v, ok := payload.(*T); ok && v != nil {
		return *v, true
	}

	var zero T

	return zero, false
}

// EncodePayload marshals a typed payload after checking it belongs to the
// given job type.
func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	matched := false

	switch t {
	case JobSendVerificationEmail:
		_, matched = as[SendVerificationEmailPayload](payload)
	case JobSendPasswordResetEmail:
		_, matched = as[SendPasswordResetEmailPayload](payload)
	}

	if !matched {
		return nil, ErrPayloadTypeMismatch
	}

	raw, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return raw, nil
}

// DecodePayload unmarshals job.Payload into the typed struct for its job type.
func DecodePayload(j Job) (any, error) {
	if !j.Type.IsValid() {
		return nil, ErrInvalidJobType
	}

	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case JobSendVerificationEmail:
		return decodeAs[SendVerificationEmailPayload](j.Payload)
	case JobSendPasswordResetEmail:
		return decodeAs[SendPasswordResetEmailPayload](j.Payload)
	}

	return nil, ErrInvalidJobType
}

func decodeAs[T any](raw []byte) (any, error) {
	var p T

	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return p, nil
}
