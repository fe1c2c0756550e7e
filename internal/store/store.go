// Package store persists session snapshots. The session keeps running when
// a save fails; only the startup load is allowed to be fatal.
package store

import (
	"context"

	"trivia-live/internal/game"
)

// Gateway loads and saves the materialized session state. Load returns
// (nil, nil) when no snapshot has been written yet.
type Gateway interface {
	Load(ctx context.Context) (*game.SessionSnapshot, error)
	Save(ctx context.Context, snap game.SessionSnapshot) error
}
