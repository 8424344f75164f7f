// Package runtime provides the task and channel primitives shared by
// the tree-walking evaluator and the bytecode VM. Channels are
// unbuffered: a send blocks its task until a receiver takes the value,
// which gives per-channel FIFO delivery in submission order.
package runtime

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Channel is a rendezvous point between tasks carrying values of the
// host value type T.
type Channel[T any] struct {
	id   string
	name string
	ch   chan T
}

func NewChannel[T any](name string) *Channel[T] {
	return &Channel[T]{
		id:   uuid.NewString(),
		name: name,
		ch:   make(chan T),
	}
}

func (c *Channel[T]) ID() string   { return c.id }
func (c *Channel[T]) Name() string { return c.name }

// Send blocks until a receiver accepts the value.
func (c *Channel[T]) Send(v T) {
	c.ch <- v
}

// Receive blocks until a sender provides a value.
func (c *Channel[T]) Receive() T {
	return <-c.ch
}

// Task is one spawned unit of execution. Tasks are fire-and-forget:
// they have no result, and a failure terminates only the task itself.
type Task struct {
	id   string
	name string
	done chan struct{}

	mu  sync.Mutex
	err error
}

func (t *Task) ID() string   { return t.id }
func (t *Task) Name() string { return t.name }

// Done is closed when the task finishes, normally or not.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err reports the task's failure, if any, once Done is closed.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Scheduler spawns tasks and tracks them until completion. A task
// error is reported through OnTaskError and never propagates to the
// spawning context.
type Scheduler struct {
	wg    sync.WaitGroup
	slots chan struct{}

	// OnTaskError, when set, observes every task failure. It may be
	// called from any task goroutine.
	OnTaskError func(t *Task, err error)
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// SetWorkerLimit caps the number of concurrently running task bodies.
// Zero means unlimited. Must be called before the first Spawn. A task
// blocked on a channel still occupies its slot, so limits below a
// program's rendezvous depth can deadlock it.
func (s *Scheduler) SetWorkerLimit(n int) {
	if n > 0 {
		s.slots = make(chan struct{}, n)
	} else {
		s.slots = nil
	}
}

// Spawn starts fn on its own goroutine and returns immediately.
// Panics inside fn are converted to task errors.
func (s *Scheduler) Spawn(name string, fn func() error) *Task {
	t := &Task{
		id:   uuid.NewString(),
		name: name,
		done: make(chan struct{}),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(t.done)
		if s.slots != nil {
			s.slots <- struct{}{}
			defer func() { <-s.slots }()
		}
		defer func() {
			if r := recover(); r != nil {
				t.fail(s, fmt.Errorf("task panicked: %v", r))
			}
		}()
		if err := fn(); err != nil {
			t.fail(s, err)
		}
	}()
	return t
}

func (t *Task) fail(s *Scheduler, err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	if s.OnTaskError != nil {
		s.OnTaskError(t, err)
	}
}

// Wait blocks until every spawned task has finished. The main program
// does not wait on tasks by default; this exists for orderly teardown
// in tests and the REPL.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
