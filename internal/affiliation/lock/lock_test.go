package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
)

func TestInMemoryLockExclusion(t *testing.T) {
	ctx := context.Background()
	locker := NewInMemory()

	release, err := locker.Acquire(ctx)
	require.NoError(t, err)

	// the lock is system-wide: a second acquire always contends
	_, err = locker.Acquire(ctx)
	assert.ErrorIs(t, err, sentinel.ErrLockHeld)

	require.NoError(t, release(ctx))

	release, err = locker.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}
