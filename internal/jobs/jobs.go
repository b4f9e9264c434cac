package jobs

import (
	"time"

	"github.com/google/uuid"
)

const defaultMaxTries = 5

// Job is the unit of asynchronous work as it travels through the redis
// queue. Payload holds raw json decoded lazily by type.
type Job struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	Payload   []byte    `json:"payload"`
	Status    JobStatus `json:"status"`
	Attempts  int       `json:"attempts"`
	Maxtries  int       `json:"maxTries"`
	RunAt     time.Time `json:"runAt"`
	LastError *string   `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewJob builds a pending job. A zero runAt means immediately.
func NewJob(t JobType, payloadJSON []byte, runAt time.Time) (Job, error) {
	if !t.IsValid() {
		return Job{}, ErrInvalidJobType
	}

	now := time.Now().UTC()

	if runAt.IsZero() {
		runAt = now
	}

	return Job{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payloadJSON,
		Status:    JobPending,
		Maxtries:  defaultMaxTries,
		RunAt:     runAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
