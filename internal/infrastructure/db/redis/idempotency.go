package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a reservation survives a request that never
	// completes it.
	pendingTTL   = 30 * time.Second
	pendingValue = "pending"
)

// reserveScript sets KEYS[1] to ARGV[1] unless it exists, returning "" when
// the key was taken and the current value otherwise.
var reserveScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v then return v end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return ''
`)

// swapScript replaces KEYS[1] with ARGV[2] only while it still holds ARGV[1].
var swapScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
  return 1
end
return 0
`)

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// IdempotencyStore maps an Idempotency-Key to the task it created.
// Key format: idem:task:<actor_id>:<key>. While a create is running the key
// holds "pending".
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims the actor's key for a new create. When the key is already
// held it reports the stored task id, or "" while the holder is still running.
func (s *IdempotencyStore) Reserve(ctx context.Context, actorID, key string) (string, bool, error) {
	current, err := reserveScript.Run(ctx, s.client,
		[]string{s.key(actorID, key)}, pendingValue, pendingTTL.Milliseconds()).Text()
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}
	switch current {
	case "":
		return "", true, nil
	case pendingValue:
		return "", false, nil
	default:
		return current, false, nil
	}
}

// Reclaim takes over a key whose task no longer exists. It fails when another
// request changed the key since staleTaskID was read.
func (s *IdempotencyStore) Reclaim(ctx context.Context, actorID, key, staleTaskID string) (bool, error) {
	return s.swap(ctx, actorID, key, staleTaskID, pendingValue, pendingTTL)
}

// Complete points a reserved key at the task it produced for the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, actorID, key, taskID string) error {
	ok, err := s.swap(ctx, actorID, key, pendingValue, taskID, s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("idempotency complete: reservation lost")
	}
	return nil
}

// Release drops a reservation after a failed create so the client can retry.
func (s *IdempotencyStore) Release(ctx context.Context, actorID, key string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.key(actorID, key)}, pendingValue).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) swap(ctx context.Context, actorID, key, from, to string, ttl time.Duration) (bool, error) {
	n, err := swapScript.Run(ctx, s.client,
		[]string{s.key(actorID, key)}, from, to, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("idempotency swap: %w", err)
	}
	return n == 1, nil
}

func (s *IdempotencyStore) key(actorID, key string) string {
	return fmt.Sprintf("idem:task:%s:%s", actorID, key)
}
