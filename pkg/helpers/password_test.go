package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := NewBcryptHasher(bcrypt.MinCost, 2)

	hash, err := h.Encode(ctx, "s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	ok, err := h.Matches(ctx, "s3cret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Matches(ctx, "wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasherMalformedHashIsMismatch(t *testing.T) {
	ok, err := NewBcryptHasher(bcrypt.MinCost, 1).Matches(context.Background(), "pw", "not-a-hash")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewBcryptHasherClampsSettings(t *testing.T) {
	h := NewBcryptHasher(99, 0)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
	assert.True(t, h.sem.TryAcquire(1))
	assert.False(t, h.sem.TryAcquire(1))
}

func TestOffloadHonoursContextWhileWaitingForSlot(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, 1)
	require.True(t, h.sem.TryAcquire(1)) // occupy the only worker
	defer h.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Encode(ctx, "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOffloadReleasesSlotAfterAbandonedCall(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, 1)
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := offload(ctx, h.sem, func() (int, error) {
			<-release
			return 1, nil
		})
		done <- err
	}()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool {
		if h.sem.TryAcquire(1) {
			h.sem.Release(1)
			return true
		}
		return false
	}, time.Second, 5*time.Millisecond)
}
