package store

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-live/internal/game"
)

type recordingGateway struct {
	mu      sync.Mutex
	saved   []game.SessionSnapshot
	fail    int
	savedCh chan game.SessionSnapshot
}

func (g *recordingGateway) Load(ctx context.Context) (*game.SessionSnapshot, error) {
	return nil, nil
}

func (g *recordingGateway) Save(ctx context.Context, snap game.SessionSnapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail > 0 {
		g.fail--
		return errors.New("gateway down")
	}
	g.saved = append(g.saved, snap)
	if g.savedCh != nil {
		g.savedCh <- snap
	}
	return nil
}

func TestSaverCoalescesToNewestSnapshot(t *testing.T) {
	gw := &recordingGateway{savedCh: make(chan game.SessionSnapshot, 4)}
	s := NewSaver(gw, zerolog.New(io.Discard), SaverOptions{})

	// Three rapid commits before the worker runs: only the newest survives.
	s.Enqueue(testSnapshot(10))
	s.Enqueue(testSnapshot(20))
	s.Enqueue(testSnapshot(30))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case snap := <-gw.savedCh:
		assert.Equal(t, 30, snap.Players[0].Score)
	case <-time.After(2 * time.Second):
		t.Fatal("saver never persisted a snapshot")
	}

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Len(t, gw.saved, 1)
}

func TestSaverRetriesTransientFailure(t *testing.T) {
	gw := &recordingGateway{fail: 2, savedCh: make(chan game.SessionSnapshot, 1)}
	s := NewSaver(gw, zerolog.New(io.Discard), SaverOptions{MaxRetries: 3, Timeout: 2 * time.Second})

	s.Enqueue(testSnapshot(10))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case snap := <-gw.savedCh:
		assert.Equal(t, 10, snap.Players[0].Score)
	case <-time.After(3 * time.Second):
		t.Fatal("saver did not recover from transient failures")
	}
}

func TestSaverGivesUpAfterBoundedRetries(t *testing.T) {
	gw := &recordingGateway{fail: 100}
	s := NewSaver(gw, zerolog.New(io.Discard), SaverOptions{MaxRetries: 2, Timeout: time.Second})

	s.Enqueue(testSnapshot(10))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Empty(t, gw.saved, "save must not succeed")
	// Bounded: 1 attempt + 2 retries, not endless.
	assert.Equal(t, 100-3, gw.fail)
}

func TestEnqueueNeverBlocks(t *testing.T) {
	gw := &recordingGateway{}
	s := NewSaver(gw, zerolog.New(io.Discard), SaverOptions{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Enqueue(testSnapshot(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked without a running worker")
	}
}
