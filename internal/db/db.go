package db

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

func NewPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)

	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)

	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)

	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)

	if err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Connector hands out one shared pool per process. The first caller dials,
// concurrent first callers share that one in-flight attempt, and everyone
// after that gets the cached pool. A failed dial is not cached so the next
// request retries.
type Connector struct {
	dbURL string
	dial  func(ctx context.Context, dbURL string) (*pgxpool.Pool, error)

	group singleflight.Group

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

func NewConnector(dbURL string) *Connector {
	return &Connector{
		dbURL: dbURL,
		dial:  NewPool,
	}
}

func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	c.mu.RLock()
	pool := c.pool
	c.mu.RUnlock()

	if pool != nil {
		return pool, nil
	}

	v, err, _ := c.group.Do("connect", func() (any, error) {
		// someone may have finished while we waited on the group
		c.mu.RLock()
		existing := c.pool
		c.mu.RUnlock()

		if existing != nil {
			return existing, nil
		}

		p, err := c.dial(ctx, c.dbURL)

		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.pool = p
		c.mu.Unlock()

		return p, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*pgxpool.Pool), nil
}

// Close tears down the shared pool. Only used at process exit.
func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}
