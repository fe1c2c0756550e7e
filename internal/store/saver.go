package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"trivia-live/internal/game"
)

// SaverOptions configures the async snapshot saver.
type SaverOptions struct {
	// MaxRetries bounds save attempts per snapshot. Default: 3.
	MaxRetries int
	// Timeout bounds one save attempt chain. Default: 2s.
	Timeout time.Duration
	// Failures is incremented once per snapshot that could not be saved.
	Failures prometheus.Counter
}

// Saver decouples the dispatcher from the gateway: Enqueue never blocks,
// and under a burst of commits only the newest snapshot is persisted. A
// failed save is logged and counted; the in-memory state stays
// authoritative and the session keeps operating non-durably.
type Saver struct {
	gw       Gateway
	logger   zerolog.Logger
	ch       chan game.SessionSnapshot
	retries  uint64
	timeout  time.Duration
	failures prometheus.Counter
}

// NewSaver creates a saver. Call Run in a goroutine to start it.
func NewSaver(gw Gateway, logger zerolog.Logger, opts SaverOptions) *Saver {
	retries := opts.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Saver{
		gw:       gw,
		logger:   logger.With().Str("component", "saver").Logger(),
		ch:       make(chan game.SessionSnapshot, 1),
		retries:  uint64(retries),
		timeout:  timeout,
		failures: opts.Failures,
	}
}

// Enqueue hands a snapshot to the saver without blocking. A snapshot still
// waiting in the slot is replaced: the newest state wins.
func (s *Saver) Enqueue(snap game.SessionSnapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Run persists queued snapshots until ctx is canceled.
func (s *Saver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-s.ch:
			s.save(ctx, snap)
		}
	}
}

func (s *Saver) save(ctx context.Context, snap game.SessionSnapshot) {
	saveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(saveCtx, backoff, func(ctx context.Context) error {
		if err := s.gw.Save(ctx, snap); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if s.failures != nil {
			s.failures.Inc()
		}
		s.logger.Error().Err(err).Msg("snapshot save failed, continuing non-durably")
	}
}
