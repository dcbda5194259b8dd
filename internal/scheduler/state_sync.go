package scheduler

import (
	"context"

	"github.com/tabkeep/tabkeep/internal/logger"
	"github.com/tabkeep/tabkeep/internal/state"
)

// StateSyncer loads the persisted collections into the in-memory state
// store on startup, before any change notifications arrive.
type StateSyncer struct {
	state  *state.Store
	logger logger.Logger
}

// NewStateSyncer creates a new state syncer.
func NewStateSyncer(st *state.Store, log logger.Logger) *StateSyncer {
	return &StateSyncer{
		state:  st,
		logger: log,
	}
}

// Sync performs the initial load from storage.
func (ss *StateSyncer) Sync(ctx context.Context) error {
	ss.logger.Info("loading state from redis")

	if err := ss.state.RefreshFromStorage(ctx); err != nil {
		return err
	}

	ss.logger.Info("state loaded")
	return nil
}
