package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sweeper is the stage run before a listing query.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// SweepFunc adapts a function to Sweeper.
type SweepFunc func(ctx context.Context, now time.Time) (int, error)

func (f SweepFunc) Sweep(ctx context.Context, now time.Time) (int, error) {
	return f(ctx, now)
}

// NoopSweeper skips the stage, for deployments where the scheduler sweeps.
var NoopSweeper Sweeper = SweepFunc(func(context.Context, time.Time) (int, error) {
	return 0, nil
})

const sweepLockKey = "payment-tracker:sweep:lock"

// Releases the lock only if it still holds our token.
const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// ErrLockHeld is returned when another process owns the sweep lock.
var ErrLockHeld = errors.New("sweep lock held by another process")

// lockClient is the part of *redis.Client the lock needs.
type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// LockedSweeper runs a sweep only while holding a Redis lock, so replicas of
// the scheduler never sweep at the same time.
type LockedSweeper struct {
	client lockClient
	next   Sweeper
	ttl    time.Duration
}

func NewLockedSweeper(client lockClient, next Sweeper, ttl time.Duration) *LockedSweeper {
	return &LockedSweeper{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

func (s *LockedSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	token := uuid.NewString()

	acquired, err := s.client.SetNX(ctx, sweepLockKey, token, s.ttl).Result()
	if err != nil {
		return 0, err
	}
	if !acquired {
		return 0, ErrLockHeld
	}
	defer s.client.Eval(context.WithoutCancel(ctx), releaseLockScript, []string{sweepLockKey}, token)

	return s.next.Sweep(ctx, now)
}
