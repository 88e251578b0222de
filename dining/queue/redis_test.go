package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupRedisQueue(t *testing.T, opts ...RedisOption) (*miniredis.Miniredis, *RedisQueue) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	opts = append([]RedisOption{WithRedisLogger(zerolog.Nop())}, opts...)
	q, err := NewRedisQueue(client, opts...)
	if err != nil {
		t.Fatalf("NewRedisQueue() error = %v", err)
	}
	return mr, q
}

func TestRedisQueueSendReceiveIsFIFO(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	_, q := setupRedisQueue(t, withClock(clock.Now))
	ctx := context.Background()

	for _, body := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}`} {
		if err := q.Send(ctx, []byte(body)); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	msgs, err := q.Receive(ctx, 2, 0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Body != `{"n":1}` || msgs[1].Body != `{"n":2}` {
		t.Fatalf("unexpected order: %+v", msgs)
	}
	for _, m := range msgs {
		if m.ID == "" || m.ReceiptHandle == "" {
			t.Fatalf("message missing identifiers: %+v", m)
		}
	}

	rest, err := q.Receive(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(rest) != 1 || rest[0].Body != `{"n":3}` {
		t.Fatalf("unexpected remainder: %+v", rest)
	}
}

func TestRedisQueueLeaseHidesMessageUntilExpiry(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	_, q := setupRedisQueue(t, withClock(clock.Now), WithVisibilityTimeout(30*time.Second))
	ctx := context.Background()

	if err := q.Send(ctx, []byte("a")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := q.Send(ctx, []byte("b")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	first, err := q.Receive(ctx, 10, 0)
	if err != nil || len(first) != 2 {
		t.Fatalf("Receive() = %v, %v", first, err)
	}
	if err := q.Delete(ctx, first[0]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	clock.Advance(10 * time.Second)
	hidden, err := q.Receive(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(hidden) != 0 {
		t.Fatalf("leased message redelivered early: %+v", hidden)
	}

	clock.Advance(25 * time.Second)
	again, err := q.Receive(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(again) != 1 || again[0].Body != "b" || again[0].ID != first[1].ID {
		t.Fatalf("expected undeleted message b to be redelivered, got %+v", again)
	}
}

func TestRedisQueueDeleteRemovesBody(t *testing.T) {
	mr, q := setupRedisQueue(t)
	ctx := context.Background()

	if err := q.Send(ctx, []byte("x")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	msgs, err := q.Receive(ctx, 1, 0)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("Receive() = %v, %v", msgs, err)
	}
	if err := q.Delete(ctx, msgs[0]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if mr.Exists(q.bodyKey()) {
		fields, _ := mr.HKeys(q.bodyKey())
		if len(fields) != 0 {
			t.Fatalf("body hash still holds %v", fields)
		}
	}
}

func TestRedisQueueDeleteRequiresID(t *testing.T) {
	_, q := setupRedisQueue(t)
	err := q.Delete(context.Background(), contractx.QueueMessage{})
	if !errors.Is(err, contractx.ErrQueueDelete) {
		t.Fatalf("expected ErrQueueDelete, got %v", err)
	}
}

func TestRedisQueueReceiveWaitsThenReturnsEmpty(t *testing.T) {
	_, q := setupRedisQueue(t, WithPollInterval(5*time.Millisecond))

	start := time.Now()
	msgs, err := q.Receive(context.Background(), 10, 40*time.Millisecond)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %+v", msgs)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("Receive returned after %s, before the wait elapsed", elapsed)
	}
}

func TestRedisQueueReceiveHonoursContext(t *testing.T) {
	_, q := setupRedisQueue(t, WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Receive(ctx, 10, time.Minute)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
