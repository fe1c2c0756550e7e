package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-live/internal/game"
)

func testSnapshot(score int) game.SessionSnapshot {
	return game.SessionSnapshot{
		Phase:                game.PhaseActive,
		Players:              []game.Player{{ID: "a", Name: "Ann", Score: score}},
		CurrentQuestionIndex: 2,
		CurrentAnswers:       []game.Answer{{PlayerID: "a", Value: "Paris", SubmittedAt: time.Now().UTC()}},
		ResultsToken:         0,
		HintIndex:            1,
		ShownHints:           []string{"h1"},
		SavedAt:              time.Now().UTC(),
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "gamestate.json"))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gamestate.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), testSnapshot(10)))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, game.PhaseActive, loaded.Phase)
	require.Len(t, loaded.Players, 1)
	assert.Equal(t, 10, loaded.Players[0].Score)
	assert.Equal(t, 2, loaded.CurrentQuestionIndex)
	assert.Equal(t, []string{"h1"}, loaded.ShownHints)
}

func TestFileStoreOverwriteKeepsLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamestate.json")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testSnapshot(10)))
	require.NoError(t, s.Save(ctx, testSnapshot(30)))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, loaded.Players[0].Score)

	// No temp files left behind by the atomic write.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamestate.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}
