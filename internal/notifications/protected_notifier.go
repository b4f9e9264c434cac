package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // hard timeout per send
	FailureThreshold int           // consecutive failures before the circuit opens
	Cooldown         time.Duration // open duration before trial calls resume
	HalfOpenMaxCalls int           // trial calls allowed while half-open
}

// ProtectedNotifier wraps a Notifier with a circuit breaker so a dead email
// provider sheds load fast instead of tying up worker goroutines.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig

	mu       sync.Mutex
	state    circuitState
	failures int
	openedAt time.Time
	trials   int
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedNotifier{inner: inner, cfg: cfg}
}

func (n *ProtectedNotifier) SendVerificationEmail(ctx context.Context, input SendVerificationEmailInput) error {
	if !n.admit() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := n.inner.SendVerificationEmail(sendCtx, input)

	n.settle(err)

	return err
}

// admit decides whether the call may reach the provider, transitioning
// open circuits to half-open once the cooldown has elapsed.
func (n *ProtectedNotifier) admit() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case circuitOpen:
		if time.Since(n.openedAt) < n.cfg.Cooldown {
			return false
		}

		n.state = circuitHalfOpen
		n.trials = 1

		return true

	case circuitHalfOpen:
		if n.trials >= n.cfg.HalfOpenMaxCalls {
			return false
		}

		n.trials++

		return true
	}

	return true
}

func (n *ProtectedNotifier) settle(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == circuitHalfOpen && n.trials > 0 {
		n.trials--
	}

	if err == nil {
		n.failures = 0
		n.state = circuitClosed

		return
	}

	n.failures++

	// a failed trial reopens without waiting for the threshold
	if n.state == circuitHalfOpen || n.failures >= n.cfg.FailureThreshold {
		n.state = circuitOpen
		n.openedAt = time.Now()
	}
}
