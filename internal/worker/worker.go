package worker

import (
	"context"
	"sync"
)

type ProcessFunc[T any] func(ctx context.Context, job T) error

// ErrorFunc receives the jobs whose processing failed.
type ErrorFunc[T any] func(job T, err error)

type WorkerPool[T any] struct {
	numWorkers int
	jobs       chan T
	processor  ProcessFunc[T]
	onError    ErrorFunc[T]
	wg         sync.WaitGroup
}

func NewWorkerPool[T any](numWorkers int, bufferSize int, processor ProcessFunc[T]) *WorkerPool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan T, bufferSize),
		processor:  processor,
	}
}

// OnError sets the failure callback. It must be called before Start.
func (wp *WorkerPool[T]) OnError(fn ErrorFunc[T]) {
	wp.onError = fn
}

func (wp *WorkerPool[T]) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool[T]) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			if err := wp.processor(ctx, job); err != nil && wp.onError != nil {
				wp.onError(job, err)
			}
		}
	}
}

// Submit queues job, blocking while the buffer is full. It gives up when ctx
// is done.
func (wp *WorkerPool[T]) Submit(ctx context.Context, job T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.jobs <- job:
		return nil
	}
}

// Stop closes the queue and waits for the workers. Queued jobs are still
// processed unless the pool's context was cancelled.
func (wp *WorkerPool[T]) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
}
