package rez

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent blocking work (resolver subprocesses, snapshot
// file I/O) so a slow or hung resolver cannot starve unrelated requests.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool admitting up to size concurrent calls.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Do runs fn once a slot is available. Acquisition respects ctx; fn itself
// is not cancelled mid-flight once started.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
