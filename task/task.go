// Package task runs cancellable units of work on a bounded queue.
//
// Every Submit creates a fresh task with its own ID, context and terminal
// state; tasks are never reused. A Queue bounds how many tasks run at once.
package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by tasks submitted after Close.
var ErrQueueClosed = errors.New("task: queue closed")

// State is the lifecycle position of a task.
type State int32

const (
	Pending State = iota
	Running
	Completed
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether s is Completed, Failed or Cancelled.
func (s State) Terminal() bool {
	return s >= Completed
}

// Func is the work a task performs. It should return promptly once ctx is done.
type Func func(ctx context.Context) error

// Queue manages a bounded number of concurrently running tasks.
type Queue struct {
	slots chan struct{}
	size  int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue running at most workers tasks at once.
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		slots: make(chan struct{}, workers),
		size:  workers,
	}
}

// Size returns the number of task slots.
func (q *Queue) Size() int {
	return q.size
}

// Submit starts a new task running fn. The task waits for a free slot while
// Pending and is Cancelled if ctx ends first.
func (q *Queue) Submit(ctx context.Context, fn Func) *Handle {
	h := newHandle(ctx)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		h.finish(ErrQueueClosed)
		return h
	}
	q.wg.Add(1)
	q.mu.Unlock()

	go q.run(h, fn)
	return h
}

func (q *Queue) run(h *Handle, fn Func) {
	defer q.wg.Done()

	select {
	case q.slots <- struct{}{}:
	case <-h.ctx.Done():
		h.finish(h.ctx.Err())
		return
	}
	defer func() { <-q.slots }()

	if h.ctx.Err() != nil {
		h.finish(h.ctx.Err())
		return
	}
	h.state.Store(int32(Running))
	h.finish(fn(h.ctx))
}

// Close rejects further submissions and waits for submitted tasks to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
}

// Handle observes and controls one submitted task.
type Handle struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}
	err    error
}

func newHandle(parent context.Context) *Handle {
	ctx, cancel := context.WithCancel(parent)
	return &Handle{
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the task's unique identifier.
func (h *Handle) ID() string {
	return h.id
}

// State returns the current state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Cancel asks the task to stop. It has no effect on a finished task.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed once the task reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task finishes and returns its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

func (h *Handle) finish(err error) {
	state := Completed
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), h.ctx.Err() != nil:
		state = Cancelled
	default:
		state = Failed
	}
	h.err = err
	h.state.Store(int32(state))
	h.cancel()
	close(h.done)
}
