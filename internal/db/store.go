package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"envmonitor/internal/types"
)

// connHandle is the subset of *pgxpool.Conn a session needs.
type connHandle interface {
	DBTX
	Ping(ctx context.Context) error
	Release()
}

// PoolStore implements types.ReadingStore by borrowing one pooled
// connection per session.
type PoolStore struct {
	acquire        func(ctx context.Context) (connHandle, error)
	acquireTimeout time.Duration
}

// NewPoolStore creates a store over pool. acquireTimeout bounds how long a
// request waits for a connection; zero means the caller's deadline.
func NewPoolStore(pool *pgxpool.Pool, acquireTimeout time.Duration) *PoolStore {
	return &PoolStore{
		acquire: func(ctx context.Context) (connHandle, error) {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
		acquireTimeout: acquireTimeout,
	}
}

// Acquire borrows a connection. Failure is reported as StoreUnavailable.
func (s *PoolStore) Acquire(ctx context.Context) (types.StoreSession, error) {
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeStoreUnavailable, "Failed to connect to the database", err)
	}
	return &session{conn: conn, readings: NewReadingRepository(conn)}, nil
}

type session struct {
	conn     connHandle
	readings *ReadingRepository
	released bool
}

func (s *session) Ping(ctx context.Context) error {
	if err := s.conn.Ping(ctx); err != nil {
		return types.NewAppError(types.ErrCodeStoreUnavailable, "Failed to connect to the database", err)
	}
	return nil
}

func (s *session) CreateReading(ctx context.Context, in types.ReadingInput) (*types.Reading, error) {
	return s.readings.Create(ctx, in)
}

func (s *session) Release() {
	if s.released {
		return
	}
	s.released = true
	s.conn.Release()
}

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// PoolProbe reports database reachability to the health endpoint.
type PoolProbe struct {
	pool pinger
}

// NewPoolProbe creates a health probe over pool.
func NewPoolProbe(pool *pgxpool.Pool) *PoolProbe {
	return &PoolProbe{pool: pool}
}

// Name implements core.HealthProbe.
func (p *PoolProbe) Name() string { return "database" }

// Check implements core.HealthProbe.
func (p *PoolProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
