package world

import (
	"context"
	"time"

	"github.com/nidhogg/hearthvale/internal/persona"
	"go.uber.org/zap"
)

// SnapshotSink persists village snapshots. Implemented by the store
// package; the core makes no durability assumptions beyond round-trip.
type SnapshotSink interface {
	SaveVillage(ctx context.Context, snaps map[string]*persona.Snapshot) error
}

// Autosaver is a TickListener that snapshots the whole village to a
// sink on a fixed world-time interval.
type Autosaver struct {
	interval time.Duration
	lastSave time.Time
	village  *Village
	sink     SnapshotSink
	logger   *zap.Logger
}

// NewAutosaver creates an autosave listener.
func NewAutosaver(interval time.Duration, village *Village, sink SnapshotSink, logger *zap.Logger) *Autosaver {
	return &Autosaver{
		interval: interval,
		village:  village,
		sink:     sink,
		logger:   logger,
	}
}

// OnTick implements TickListener.
func (a *Autosaver) OnTick(worldTime time.Time) {
	if a.lastSave.IsZero() {
		a.lastSave = worldTime
		return
	}
	if worldTime.Sub(a.lastSave) < a.interval {
		return
	}
	a.lastSave = worldTime

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.sink.SaveVillage(ctx, a.village.Serialize()); err != nil {
		a.logger.Warn("autosave failed", zap.Error(err))
		return
	}
	a.logger.Debug("autosave complete", zap.Time("world_time", worldTime))
}
