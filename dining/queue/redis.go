package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

const (
	defaultRedisKeyPrefix    = "dining:requests"
	defaultVisibilityTimeout = 30 * time.Second
	defaultRedisPollInterval = 200 * time.Millisecond
)

// claimScript requeues leases whose deadline passed, then leases up to ARGV[3]
// pending ids until ARGV[2].
// KEYS[1] pending list, KEYS[2] in-flight zset (score = lease deadline, unix ms).
var claimScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, id in ipairs(expired) do
  redis.call('ZREM', KEYS[2], id)
  redis.call('RPUSH', KEYS[1], id)
end
local claimed = {}
for i = 1, tonumber(ARGV[3]) do
  local id = redis.call('RPOP', KEYS[1])
  if not id then break end
  redis.call('ZADD', KEYS[2], ARGV[2], id)
  table.insert(claimed, id)
end
return claimed
`)

type RedisOption func(*RedisQueue)

func WithVisibilityTimeout(d time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if d > 0 {
			q.visibility = d
		}
	}
}

func WithKeyPrefix(prefix string) RedisOption {
	return func(q *RedisQueue) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			q.keyPrefix = trimmed
		}
	}
}

func WithPollInterval(d time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if d > 0 {
			q.pollInterval = d
		}
	}
}

func WithRedisLogger(logger zerolog.Logger) RedisOption {
	return func(q *RedisQueue) {
		q.logger = logger
	}
}

func withClock(now func() time.Time) RedisOption {
	return func(q *RedisQueue) {
		q.now = now
	}
}

// RedisQueue is an at-least-once queue on plain Redis. A received message is
// leased for the visibility timeout; if it is not deleted before the lease
// expires it becomes receivable again.
type RedisQueue struct {
	client       redis.UniversalClient
	keyPrefix    string
	visibility   time.Duration
	pollInterval time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

var (
	_ contractx.RequestQueue  = (*RedisQueue)(nil)
	_ contractx.QueueConsumer = (*RedisQueue)(nil)
)

func NewRedisQueue(client redis.UniversalClient, opts ...RedisOption) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	q := &RedisQueue{
		client:       client,
		keyPrefix:    defaultRedisKeyPrefix,
		visibility:   defaultVisibilityTimeout,
		pollInterval: defaultRedisPollInterval,
		logger:       zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q, nil
}

// NewRedisQueueFromConfig dials Redis and checks connectivity.
func NewRedisQueueFromConfig(ctx context.Context, cfg Config, logger zerolog.Logger) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.RedisAddr).
		Int("db", cfg.RedisDB).
		Msg("connected to Redis request queue")

	return NewRedisQueue(client,
		WithKeyPrefix(cfg.RedisKeyPrefix),
		WithVisibilityTimeout(cfg.VisibilityTimeout),
		WithRedisLogger(logger),
	)
}

func (q *RedisQueue) pendingKey() string  { return q.keyPrefix + ":pending" }
func (q *RedisQueue) inflightKey() string { return q.keyPrefix + ":inflight" }
func (q *RedisQueue) bodyKey() string     { return q.keyPrefix + ":body" }

func (q *RedisQueue) Send(ctx context.Context, body []byte) error {
	id := uuid.NewString()
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.bodyKey(), id, string(body))
		pipe.LPush(ctx, q.pendingKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis enqueue: %w", err)
	}
	return nil
}

// Receive leases up to max messages, polling until wait has elapsed when the queue is empty.
func (q *RedisQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]contractx.QueueMessage, error) {
	if max <= 0 {
		max = 1
	}
	deadline := q.now().Add(wait)

	for {
		msgs, err := q.claim(ctx, max)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 || !q.now().Before(deadline) {
			return msgs, nil
		}

		timer := time.NewTimer(q.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (q *RedisQueue) claim(ctx context.Context, max int) ([]contractx.QueueMessage, error) {
	now := q.now()
	ids, err := claimScript.Run(ctx, q.client,
		[]string{q.pendingKey(), q.inflightKey()},
		now.UnixMilli(), now.Add(q.visibility).UnixMilli(), max,
	).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: claim: %w", contractx.ErrQueueReceive, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	bodies, err := q.client.HMGet(ctx, q.bodyKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: load bodies: %w", contractx.ErrQueueReceive, err)
	}

	msgs := make([]contractx.QueueMessage, 0, len(ids))
	for i, id := range ids {
		body, ok := bodies[i].(string)
		if !ok {
			// Deleted between claim and read; drop the orphan lease.
			q.logger.Warn().Str("message_id", id).Msg("leased message has no body")
			q.client.ZRem(ctx, q.inflightKey(), id)
			continue
		}
		msgs = append(msgs, contractx.QueueMessage{ID: id, ReceiptHandle: id, Body: body})
	}
	return msgs, nil
}

func (q *RedisQueue) Delete(ctx context.Context, msg contractx.QueueMessage) error {
	id := msg.ReceiptHandle
	if id == "" {
		id = msg.ID
	}
	if id == "" {
		return fmt.Errorf("%w: empty message id", contractx.ErrQueueDelete)
	}
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.inflightKey(), id)
		pipe.HDel(ctx, q.bodyKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", contractx.ErrQueueDelete, err)
	}
	return nil
}

// Close releases the underlying client.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
