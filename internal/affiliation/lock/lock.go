// Package lock serializes tenant setup work across service instances.
package lock

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/platform/redis"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

// One lock for the whole deployment: tenant setups serialize even for
// different tenants, so the batch inserts never interleave.
const (
	lockKey = "mod-consortia:tenant-setup"
	ttl     = 30 * time.Second
)

// Locker grants exclusive ownership of the tenant-setup critical section.
// Acquire returns sentinel.ErrLockHeld while another owner holds it.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// compare-and-delete so an expired lock re-acquired elsewhere is never
// released by the previous owner.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis implements Locker on the shared redis instance.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (l *Redis) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, sentinel.ErrLockHeld
	}
	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err()
	}
	return release, nil
}

// InMemory implements Locker for tests and single-instance development.
type InMemory struct {
	held chan struct{}
}

func NewInMemory() *InMemory {
	held := make(chan struct{}, 1)
	held <- struct{}{}
	return &InMemory{held: held}
}

func (l *InMemory) Acquire(ctx context.Context) (func(context.Context) error, error) {
	select {
	case <-l.held:
	default:
		return nil, sentinel.ErrLockHeld
	}

	release := func(context.Context) error {
		l.held <- struct{}{}
		return nil
	}
	return release, nil
}
