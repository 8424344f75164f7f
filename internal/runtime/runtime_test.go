package runtime

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestChannelFIFO(t *testing.T) {
	ch := NewChannel[int]("numbers")
	s := NewScheduler()

	s.Spawn("producer", func() error {
		for i := 0; i < 100; i++ {
			ch.Send(i)
		}
		return nil
	})

	for i := 0; i < 100; i++ {
		if got := ch.Receive(); got != i {
			t.Fatalf("out of order: got %d, want %d", got, i)
		}
	}
	s.Wait()
}

func TestChannelRendezvous(t *testing.T) {
	ch := NewChannel[string]("sync")
	s := NewScheduler()

	var sentAt time.Time
	s.Spawn("sender", func() error {
		ch.Send("v")
		sentAt = time.Now()
		return nil
	})

	// The sender must block until this receive.
	time.Sleep(20 * time.Millisecond)
	before := time.Now()
	if got := ch.Receive(); got != "v" {
		t.Fatalf("got %q", got)
	}
	s.Wait()
	if sentAt.Before(before) {
		t.Error("send completed before a receiver was ready")
	}
}

func TestTaskErrorIsIsolated(t *testing.T) {
	s := NewScheduler()

	var mu sync.Mutex
	var reported []error
	s.OnTaskError = func(_ *Task, err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}

	boom := errors.New("boom")
	failing := s.Spawn("failing", func() error { return boom })
	fine := s.Spawn("fine", func() error { return nil })
	s.Wait()

	if !errors.Is(failing.Err(), boom) {
		t.Errorf("failing task error: %v", failing.Err())
	}
	if fine.Err() != nil {
		t.Errorf("healthy task polluted: %v", fine.Err())
	}
	if len(reported) != 1 || !errors.Is(reported[0], boom) {
		t.Errorf("reported errors: %v", reported)
	}
}

func TestTaskPanicBecomesError(t *testing.T) {
	s := NewScheduler()
	task := s.Spawn("panicky", func() error { panic("kaboom") })
	<-task.Done()
	s.Wait()

	if task.Err() == nil || task.Err().Error() != "task panicked: kaboom" {
		t.Errorf("got %v", task.Err())
	}
}

func TestTaskIdentity(t *testing.T) {
	s := NewScheduler()
	a := s.Spawn("a", func() error { return nil })
	b := s.Spawn("b", func() error { return nil })
	s.Wait()

	if a.ID() == b.ID() {
		t.Error("task IDs collide")
	}
	if a.Name() != "a" || b.Name() != "b" {
		t.Errorf("names wrong: %q, %q", a.Name(), b.Name())
	}
}

func TestWorkerLimit(t *testing.T) {
	s := NewScheduler()
	s.SetWorkerLimit(2)

	var mu sync.Mutex
	running, peak := 0, 0
	for i := 0; i < 10; i++ {
		s.Spawn("w", func() error {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
			return nil
		})
	}
	s.Wait()

	if peak > 2 {
		t.Errorf("peak concurrency %d exceeds the limit", peak)
	}
}
