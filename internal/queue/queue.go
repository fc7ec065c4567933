// Package queue provides a Redis-backed artifact store and FIFO work
// queue for job records: put/get by key, blocking pop by queue name,
// and one operation (Create) that sets a key and pushes onto a queue
// atomically. Create is the only operation that pushes.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

// Sentinel errors callers branch on with errors.Is.
var (
	ErrIO              = errors.New("queue: connection error")
	ErrSerialization   = errors.New("queue: serialization error")
	ErrDeserialization = errors.New("queue: deserialization error")
)

// createScript atomically sets key=value and pushes value onto the
// tail of queue. A connection drop between the two writes cannot
// happen: partial failure (key set, enqueue lost) is ruled out by
// construction rather than retried after the fact.
var createScript = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1])
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1
`)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Client is the queue/store client. The underlying *redis.Client already
// gives a bounded connection pool with suspend-on-acquire,
// auto-release semantics, so no additional pooling layer is added on
// top (see DESIGN.md).
type Client struct {
	rdb *redis.Client
}

// Connect opens a Redis client and verifies connectivity.
func Connect(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return &Client{rdb: rdb}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Redis exposes the underlying client for collaborators needing
// primitives outside the store/queue surface, such as pub/sub.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Store JSON-encodes j and writes it under key, optionally with
// a second-granularity TTL.
func (c *Client) Store(ctx context.Context, key string, j *job.Job, ttl time.Duration) error {
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	if ttl > 0 {
		err = c.rdb.Set(ctx, key, data, ttl).Err()
	} else {
		err = c.rdb.Set(ctx, key, data, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// Get returns the job stored under key. found is false iff the key is
// absent.
func (c *Client) Get(ctx context.Context, key string) (j *job.Job, found bool, err error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrIO, err)
	}

	var decoded job.Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return &decoded, true, nil
}

// PopBlocking blocks up to timeout waiting for an entry at the head of
// queue. found is false on timeout; it never busy-loops (BLPOP blocks
// server-side).
func (c *Client) PopBlocking(ctx context.Context, queue string, timeout time.Duration) (j *job.Job, found bool, err error) {
	result, err := c.rdb.BLPop(ctx, timeout, queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrIO, err)
	}

	// BLPOP returns [queueName, value].
	if len(result) != 2 {
		return nil, false, fmt.Errorf("%w: unexpected BLPOP reply shape", ErrDeserialization)
	}

	var decoded job.Job
	if err := json.Unmarshal([]byte(result[1]), &decoded); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return &decoded, true, nil
}

// Create atomically sets key=j and pushes j onto the tail of queue:
// the submit operation. A single transaction, so partial failure (key
// set, enqueue lost, or vice versa) cannot happen.
func (c *Client) Create(ctx context.Context, key, queue string, j *job.Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	if err := createScript.Run(ctx, c.rdb, []string{key, queue}, string(data)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
