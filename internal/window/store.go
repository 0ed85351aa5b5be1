// Package window holds the dashboard's rolling window: the readings of the
// last few minutes in timestamp order, mirrored to durable snapshot storage
// so a restart resumes where it left off.
package window

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"envmonitor/internal/types"
)

const (
	// DefaultHorizon is how far back the window reaches.
	DefaultHorizon = 5 * time.Minute
	// DefaultSnapshotKey names the snapshot in storage.
	DefaultSnapshotKey = "environmentalData"
)

// Storage is durable key/value snapshot storage. Get reports ok=false when
// nothing is stored under key.
type Storage interface {
	Get(key string) (data []byte, ok bool, err error)
	Set(key string, data []byte) error
}

// Store is the rolling window. Merge is the only mutation and runs under the
// write lock, so readers never observe a half-evicted, half-appended state.
type Store struct {
	mu       sync.RWMutex
	readings []types.Reading

	horizon time.Duration
	key     string
	storage Storage
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHorizon overrides DefaultHorizon.
func WithHorizon(d time.Duration) Option {
	return func(s *Store) { s.horizon = d }
}

// WithSnapshotKey overrides DefaultSnapshotKey.
func WithSnapshotKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for restore and persist diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty window backed by storage. Call Restore to load the
// previous snapshot.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		horizon: DefaultHorizon,
		key:     DefaultSnapshotKey,
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evict returns the readings whose timestamp is not older than
// now-horizon, in input order. A reading exactly at the cutoff is
// kept. The input slice is not modified.
func Evict(readings []types.Reading, now time.Time, horizon time.Duration) []types.Reading {
	cutoff := now.Add(-horizon)
	out := make([]types.Reading, 0, len(readings))
	for _, r := range readings {
		if !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Restore loads the snapshot, evicts readings already stale at now and
// adopts the rest. A missing, unreadable or corrupt snapshot leaves the
// window empty; Restore never fails.
func (s *Store) Restore(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = nil

	data, ok, err := s.storage.Get(s.key)
	if err != nil {
		s.logger.Warn("snapshot read failed, starting empty",
			"key", s.key,
			"code", types.CodeOf(err),
			"error", err.Error(),
		)
		return
	}
	if !ok {
		s.logger.Info("no snapshot found, starting empty", "key", s.key)
		return
	}

	var decoded []types.Reading
	if err := json.Unmarshal(data, &decoded); err != nil {
		corrupt := types.NewAppError(types.ErrCodeSnapshotCorrupt, "snapshot is not a reading list", err)
		s.logger.Warn("snapshot corrupt, starting empty",
			"key", s.key,
			"code", corrupt.Code,
			"error", corrupt.Error(),
		)
		return
	}

	slices.SortStableFunc(decoded, func(a, b types.Reading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	s.readings = Evict(decoded, now, s.horizon)

	s.logger.Info("snapshot restored",
		"key", s.key,
		"stored", len(decoded),
		"retained", len(s.readings),
	)
}

// Evict drops stale readings from the window and persists the result.
func (s *Store) Evict(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Evict(s.readings, now, s.horizon)
	return s.adopt(next)
}

// Merge evicts at now, inserts r at its timestamp position (an append for the
// usual newest reading), persists the result and adopts it. If persisting
// fails the in-memory window is still updated and the error is returned.
func (s *Store) Merge(r types.Reading, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Evict(s.readings, now, s.horizon)
	idx := sort.Search(len(next), func(i int) bool {
		return next[i].Timestamp.After(r.Timestamp)
	})
	next = slices.Insert(next, idx, r)

	return s.adopt(next)
}

// adopt persists next and installs it. Callers hold the write lock.
func (s *Store) adopt(next []types.Reading) error {
	s.readings = next

	data, err := json.Marshal(next)
	if err != nil {
		return types.NewAppError(types.ErrCodeSnapshotWriteFailed, "failed to encode snapshot", err)
	}
	if err := s.storage.Set(s.key, data); err != nil {
		return types.NewAppError(types.ErrCodeSnapshotWriteFailed, "failed to write snapshot", err)
	}
	return nil
}

// Snapshot returns a copy of the window in timestamp order.
func (s *Store) Snapshot() []types.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.readings)
}

// Len returns the number of readings in the window.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// Horizon returns the retention horizon.
func (s *Store) Horizon() time.Duration {
	return s.horizon
}
