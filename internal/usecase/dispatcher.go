package usecase

import (
	"context"
	"errors"
	"sync"
)

// ErrDispatcherClosed is returned for operations submitted after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Op is a unit of store work run by the Dispatcher.
type Op func(ctx context.Context) error

type job struct {
	ctx    context.Context
	op     Op
	result chan error
}

// Dispatcher runs store mutations on a fixed set of background workers.
// Operations sharing a key always land on the same worker and run in
// submission order; different keys may run concurrently.
type Dispatcher struct {
	mu     sync.RWMutex
	closed bool
	queues []chan job
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines, each with a queue of queueSize.
func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	d := &Dispatcher{queues: make([]chan job, workers)}
	for i := range d.queues {
		q := make(chan job, queueSize)
		d.queues[i] = q
		d.wg.Add(1)
		go d.work(q)
	}

	return d
}

// Submit enqueues op under key and returns a channel that receives its
// result exactly once.
func (d *Dispatcher) Submit(ctx context.Context, key int64, op Op) <-chan error {
	result := make(chan error, 1)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		result <- ErrDispatcherClosed
		return result
	}

	select {
	case d.queues[d.shard(key)] <- job{ctx: ctx, op: op, result: result}:
	case <-ctx.Done():
		result <- ctx.Err()
	}

	return result
}

// Do submits op and waits for it to finish.
func (d *Dispatcher) Do(ctx context.Context, key int64, op Op) error {
	select {
	case err := <-d.Submit(ctx, key, op):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for queued operations to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) shard(key int64) int {
	n := int64(len(d.queues))
	s := key % n
	if s < 0 {
		s += n
	}
	return int(s)
}

func (d *Dispatcher) work(q <-chan job) {
	defer d.wg.Done()

	for j := range q {
		if err := j.ctx.Err(); err != nil {
			j.result <- err
			continue
		}
		j.result <- j.op(j.ctx)
	}
}
