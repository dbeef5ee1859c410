// Package webhook delivers best-effort completion notifications for a
// solve job: a POST of the terminal job state to an operator-supplied
// URL. Webhook delivery never affects job status — a job that
// completed or failed stays completed or failed regardless of whether
// its notification went out. A circuit breaker protects the worker
// pool from a webhook receiver that is down or slow, so one flaky
// endpoint can't back up every subsequent job's notification attempt.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/paiban/roster/pkg/logger"
)

// Event is the payload posted to a job's webhook URL on a terminal
// state transition.
type Event struct {
	JobID      string          `json:"jobId"`
	Status     string          `json:"status"` // completed | failed | cancelled
	OccurredAt time.Time       `json:"occurredAt"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Config tunes the notifier's HTTP client and circuit breaker.
type Config struct {
	RequestTimeout   time.Duration
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold uint32
}

// DefaultConfig returns the notifier's default request timeout and
// circuit-breaker tuning.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:   10 * time.Second,
		MaxRequests:      1,
		Interval:         10 * time.Second,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// Notifier posts Events to webhook URLs through a per-URL circuit
// breaker, so a single misbehaving destination URL doesn't trip every
// other destination's breaker too.
type Notifier struct {
	client   *http.Client
	config   Config
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// New constructs a Notifier.
func New(config Config) *Notifier {
	return &Notifier{
		client:   &http.Client{Timeout: config.RequestTimeout},
		config:   config,
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// Notify posts event to url. Failures (including an open circuit) are
// logged and swallowed — the caller's job lifecycle does not depend on
// notification delivery.
func (n *Notifier) Notify(ctx context.Context, url string, event Event) {
	if url == "" {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Str("job_id", event.JobID).Err(err).Msg("failed to encode webhook payload")
		return
	}

	breaker := n.breakerFor(url)
	_, err = breaker.Execute(func() ([]byte, error) {
		return nil, n.post(ctx, url, body)
	})
	if err != nil {
		logger.Warn().
			Str("job_id", event.JobID).
			Str("url", url).
			Str("status", event.Status).
			Err(err).
			Msg("webhook delivery failed, job status unaffected")
		return
	}

	logger.Info().Str("job_id", event.JobID).Str("url", url).Msg("webhook delivered")
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook receiver returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) breakerFor(url string) *gobreaker.CircuitBreaker[[]byte] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if b, ok := n.breakers[url]; ok {
		return b
	}

	settings := gobreaker.Settings{
		Name:        url,
		MaxRequests: n.config.MaxRequests,
		Interval:    n.config.Interval,
		Timeout:     n.config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= n.config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().
				Str("url", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("webhook circuit breaker state changed")
		},
	}

	b := gobreaker.NewCircuitBreaker[[]byte](settings)
	n.breakers[url] = b
	return b
}
