package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/spoolworks/spindle/pkg/domain"
	"github.com/spoolworks/spindle/pkg/ports"
)

// Store implements ports.SnapshotStore using Redis. Snapshots are stored
// as JSON values with a per-simulation ZSET index scored by frame number.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiration for snapshot keys (0 = keep forever).
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis snapshot store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "spindle:snapshot:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(simulationID string, frame int) string {
	return fmt.Sprintf("%s%s:%d", s.prefix, simulationID, frame)
}

func (s *Store) indexKey(simulationID string) string {
	return s.prefix + simulationID + ":index"
}

// Save persists the snapshot and indexes its frame.
func (s *Store) Save(ctx context.Context, snap ports.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(snap.SimulationID, snap.Frame), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(snap.SimulationID), backend.Z{
		Score:  float64(snap.Frame),
		Member: strconv.Itoa(snap.Frame),
	})
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(snap.SimulationID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}
	return nil
}

// Load retrieves one snapshot.
func (s *Store) Load(ctx context.Context, simulationID string, frame int) (*ports.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key(simulationID, frame)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot from redis: %w", err)
	}
	var snap ports.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Frames lists captured frames, ascending (ZSET range by score order).
func (s *Store) Frames(ctx context.Context, simulationID string) ([]int, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(simulationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot frames: %w", err)
	}
	frames := make([]int, 0, len(members))
	for _, m := range members {
		frame, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Delete removes all snapshots and the index for a simulation.
func (s *Store) Delete(ctx context.Context, simulationID string) error {
	frames, err := s.Frames(ctx, simulationID)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	for _, frame := range frames {
		pipe.Del(ctx, s.key(simulationID, frame))
	}
	pipe.Del(ctx, s.indexKey(simulationID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshots from redis: %w", err)
	}
	return nil
}
