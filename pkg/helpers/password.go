package helpers

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// BcryptHasher hashes and verifies passwords on a bounded set of worker
// goroutines so CPU-bound bcrypt work never runs more than `workers` at a
// time, however many requests are in flight.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher builds a hasher. A cost outside bcrypt's range falls back
// to bcrypt.DefaultCost; workers below 1 is treated as 1.
func NewBcryptHasher(cost, workers int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers < 1 {
		workers = 1
	}
	return &BcryptHasher{cost: cost, sem: semaphore.NewWeighted(int64(workers))}
}

// Encode hashes the plain text password.
func (h *BcryptHasher) Encode(ctx context.Context, plain string) (string, error) {
	return offload(ctx, h.sem, func() (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

// Matches compares a plain password with a bcrypt hash. A malformed hash is
// reported as a mismatch; the error is only set when ctx ends first.
func (h *BcryptHasher) Matches(ctx context.Context, plain, hash string) (bool, error) {
	return offload(ctx, h.sem, func() (bool, error) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, nil
	})
}

// offload waits for a worker slot, runs fn on its own goroutine and hands the
// result back. If ctx ends first the caller returns immediately; the running
// fn still completes and releases its slot.
func offload[T any](ctx context.Context, sem *semaphore.Weighted, fn func() (T, error)) (T, error) {
	var zero T
	if err := sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer sem.Release(1)
		v, err := fn()
		ch <- result{v: v, err: err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
