// Package store is the persistence collaborator: a Redis-backed
// snapshot store for NPC state and a Postgres transcript archive. The
// core only promises that what was serialized deserializes losslessly;
// key naming, versioning, and scheduling live here.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nidhogg/hearthvale/internal/persona"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// snapshotVersion is bumped when the snapshot shape changes
// incompatibly; old keys are simply left behind.
const snapshotVersion = "v1"

// SnapshotStore persists per-NPC snapshots in Redis.
type SnapshotStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewSnapshotStore connects to Redis and verifies the connection.
func NewSnapshotStore(url string, logger *zap.Logger) (*SnapshotStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("Redis connected")
	return &SnapshotStore{rdb: rdb, logger: logger}, nil
}

// Close shuts down the Redis client.
func (s *SnapshotStore) Close() error {
	return s.rdb.Close()
}

func snapshotKey(npc string) string {
	return "hearthvale:npc:" + npc + ":" + snapshotVersion
}

// SaveVillage writes one key per NPC. Implements world.SnapshotSink.
func (s *SnapshotStore) SaveVillage(ctx context.Context, snaps map[string]*persona.Snapshot) error {
	for name, snap := range snaps {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", name, err)
		}
		if err := s.rdb.Set(ctx, snapshotKey(name), data, 0).Err(); err != nil {
			return fmt.Errorf("save snapshot %s: %w", name, err)
		}
	}
	s.logger.Debug("village saved", zap.Int("npcs", len(snaps)))
	return nil
}

// LoadVillage reads snapshots for the given NPC names. Missing keys and
// undecodable payloads are skipped with a warning; callers restore what
// came back and default the rest.
func (s *SnapshotStore) LoadVillage(ctx context.Context, names []string) (map[string]*persona.Snapshot, error) {
	out := make(map[string]*persona.Snapshot)
	for _, name := range names {
		data, err := s.rdb.Get(ctx, snapshotKey(name)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", name, err)
		}
		var snap persona.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			s.logger.Warn("corrupt snapshot skipped",
				zap.String("npc", name), zap.Error(err))
			continue
		}
		out[name] = &snap
	}
	return out, nil
}
