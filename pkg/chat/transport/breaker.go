package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker behavior.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration
}

// BreakerStreamer wraps a Streamer with circuit breaker protection. When the
// webhook fails repeatedly, the circuit opens and sends fail fast without
// reaching it. Cancellation does not count as a webhook failure.
type BreakerStreamer struct {
	inner   Streamer
	breaker *gobreaker.TwoStepCircuitBreaker[struct{}]
}

// NewBreakerStreamer wraps inner with a circuit breaker. Zero-valued config
// fields fall back to defaults.
func NewBreakerStreamer(inner Streamer, cfg BreakerConfig) *BreakerStreamer {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	cb := gobreaker.NewTwoStepCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "webhook",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("breaker_state_change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerStreamer{inner: inner, breaker: cb}
}

// Start routes the exchange through the circuit breaker. The settle result of
// the handle decides success or failure once the exchange completes.
func (b *BreakerStreamer) Start(ctx context.Context, req Request, onProgress ProgressFunc) (*Handle, error) {
	done, err := b.breaker.Allow()
	if err != nil {
		return nil, fmt.Errorf("webhook circuit open: %w", err)
	}

	h, err := b.inner.Start(ctx, req, onProgress)
	if err != nil {
		done(err)
		return nil, err
	}

	go func() {
		<-h.Done()
		settleErr := h.Err()
		if settleErr == nil || errors.Is(settleErr, context.Canceled) {
			done(nil)
		} else {
			done(settleErr)
		}
	}()
	return h, nil
}

// State returns the current circuit breaker state for monitoring.
func (b *BreakerStreamer) State() gobreaker.State {
	return b.breaker.State()
}

var _ Streamer = (*BreakerStreamer)(nil)
