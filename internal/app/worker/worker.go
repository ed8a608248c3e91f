package worker

import (
	"context"
	"sync"

	"fastpull/internal/config"
)

// Pool bounds the number of concurrently running jobs
type Pool interface {
	Acquire(ctx context.Context) error
	Release()
	Go(ctx context.Context, job func()) error
	Wait()
}

type pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewWorkerPool creates a pool sized by the preflight settings
func NewWorkerPool(cfg *config.Config) Pool {
	return &pool{
		sem: make(chan struct{}, cfg.Preflight.Workers),
	}
}

// Acquire takes a slot, blocking while the pool is full; it fails once ctx is done
func (w *pool) Acquire(ctx context.Context) error {
	select {
	case w.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot
func (w *pool) Release() {
	<-w.sem
}

// Go runs job on its own goroutine once a slot is free
func (w *pool) Go(ctx context.Context, job func()) error {
	if err := w.Acquire(ctx); err != nil {
		return err
	}

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer w.Release()

		job()
	}()

	return nil
}

// Wait blocks until every job started with Go has returned
func (w *pool) Wait() {
	w.wg.Wait()
}
