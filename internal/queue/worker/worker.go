package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/authhub/internal/jobs"
	"github.com/geocoder89/authhub/internal/notifications"
	"github.com/geocoder89/authhub/internal/observability"
)

// Queue is the slice of the redis client the worker needs.
type Queue interface {
	Enqueue(ctx context.Context, j jobs.Job) error
	Dequeue(ctx context.Context, timeout time.Duration) (jobs.Job, bool, error)
}

type Config struct {
	PollTimeout   time.Duration // BRPOP wait per iteration
	JobTimeout    time.Duration // per-job execution budget
	ShutdownGrace time.Duration
	VerifyBaseURL string // prefix for links in verification emails
}

type Worker struct {
	cfg      Config
	queue    Queue
	notifier notifications.Notifier
	log      *slog.Logger
	metrics  *observability.Prom

	readyMu sync.RWMutex
	ready   bool

	retryWG sync.WaitGroup
}

func New(cfg Config, queue Queue, notifier notifications.Notifier, log *slog.Logger, metrics *observability.Prom) *Worker {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 2 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Second
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		queue:    queue,
		notifier: notifier,
		log:      log,
		metrics:  metrics,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			w.waitForRetries()
			return nil
		default:
		}

		j, ok, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)

		if err != nil {
			if ctx.Err() != nil {
				w.waitForRetries()
				return nil
			}

			w.log.Error("dequeue failed", "err", err)

			// brief pause so a dead redis doesn't spin the loop
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				w.waitForRetries()
				return nil
			}
			continue
		}

		if !ok {
			continue
		}

		w.processOne(ctx, j)
	}
}

func (w *Worker) processOne(ctx context.Context, j jobs.Job) {
	start := time.Now()

	if w.metrics != nil {
		w.metrics.JobsInFlight.Inc()
		defer w.metrics.JobsInFlight.Dec()
	}

	err := w.execute(ctx, j)

	result := "done"

	if err != nil {
		result = w.handleFailure(ctx, j, err)
	}

	if w.metrics != nil {
		w.metrics.JobResults.WithLabelValues(string(j.Type), result).Inc()
		w.metrics.JobDuration.WithLabelValues(string(j.Type), result).Observe(time.Since(start).Seconds())
	}
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	err = jobs.ValidatePayload(j.Type, payload)

	if err != nil {
		return err
	}

	execCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	switch p := payload.(type) {
	case jobs.SendVerificationEmailPayload:
		// stale jobs for tokens that already expired are not worth sending
		if time.Now().UTC().After(p.ExpiresAt) {
			w.log.Info("skipping stale verification email", "job_id", j.ID, "user_id", p.UserID)
			return nil
		}

		return w.notifier.SendVerificationEmail(execCtx, notifications.SendVerificationEmailInput{
			Email:     p.Email,
			Username:  p.Username,
			Token:     p.Token,
			VerifyURL: fmt.Sprintf("%s/verifyemail?token=%s", w.cfg.VerifyBaseURL, p.Token),
		})

	default:
		return jobs.ErrInvalidJobType
	}
}

// handleFailure re-enqueues with backoff until the job runs out of tries.
// Returns the result label for metrics.
func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, execErr error) string {
	msg := execErr.Error()
	j.LastError = &msg
	j.Attempts++
	j.UpdatedAt = time.Now().UTC()

	if j.Attempts >= j.Maxtries {
		j.Status = jobs.JobFailed
		w.log.Error("job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "err", execErr)
		return "failed"
	}

	delay := ExponentialBackoff(j.Attempts - 1)
	j.Status = jobs.JobPending
	j.RunAt = time.Now().UTC().Add(delay)

	w.log.Warn("job failed, retrying", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts, "delay", delay, "err", execErr)

	w.retryWG.Add(1)

	go func() {
		defer w.retryWG.Done()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			// push back immediately so the job is not lost on shutdown
		}

		enqCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := w.queue.Enqueue(enqCtx, j); err != nil {
			w.log.Error("re-enqueue failed, job dropped", "job_id", j.ID, "err", err)
		}
	}()

	return "retry"
}

func (w *Worker) waitForRetries() {
	done := make(chan struct{})

	go func() {
		w.retryWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Error("shutdown grace elapsed with retries pending")
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
