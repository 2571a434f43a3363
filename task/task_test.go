package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueue_States(t *testing.T) {
	q := NewQueue(2)
	defer q.Close()
	ctx := context.Background()
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		fn        Func
		wantState State
		wantErr   error
	}{
		{"completed", func(context.Context) error { return nil }, Completed, nil},
		{"failed", func(context.Context) error { return errBoom }, Failed, errBoom},
		{"cancelled by work", func(context.Context) error { return context.Canceled }, Cancelled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := q.Submit(ctx, tt.fn)
			err := h.Wait()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Wait() = %v, want %v", err, tt.wantErr)
			}
			if h.State() != tt.wantState {
				t.Errorf("State() = %v, want %v", h.State(), tt.wantState)
			}
			if !h.State().Terminal() {
				t.Errorf("state %v is not terminal", h.State())
			}
		})
	}
}

func TestHandle_Cancel(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	started := make(chan struct{})
	h := q.Submit(context.Background(), func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	if h.State() != Running {
		t.Errorf("State() = %v, want running", h.State())
	}
	h.Cancel()

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not stop after Cancel")
	}
	if h.State() != Cancelled {
		t.Errorf("State() = %v, want cancelled", h.State())
	}
	if !errors.Is(h.Wait(), context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", h.Wait())
	}
}

func TestHandle_CancelWhilePending(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	blocker := q.Submit(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	var ran atomic.Bool
	pending := q.Submit(context.Background(), func(context.Context) error {
		ran.Store(true)
		return nil
	})
	pending.Cancel()
	<-pending.Done()

	close(release)
	if err := blocker.Wait(); err != nil {
		t.Errorf("blocker Wait() = %v", err)
	}
	if pending.State() != Cancelled {
		t.Errorf("State() = %v, want cancelled", pending.State())
	}
	if ran.Load() {
		t.Error("cancelled pending task ran")
	}
}

func TestQueue_FreshHandles(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	first := q.Submit(context.Background(), func(context.Context) error { return errors.New("first") })
	_ = first.Wait()
	second := q.Submit(context.Background(), func(context.Context) error { return nil })

	if err := second.Wait(); err != nil {
		t.Errorf("second Wait() = %v", err)
	}
	if first.ID() == second.ID() {
		t.Error("tasks share an ID")
	}
	if first.State() != Failed || second.State() != Completed {
		t.Errorf("states = %v, %v", first.State(), second.State())
	}
}

func TestQueue_Bounded(t *testing.T) {
	const workers = 3
	q := NewQueue(workers)

	var running, peak atomic.Int32
	var mu sync.Mutex
	var handles []*Handle
	for i := 0; i < 12; i++ {
		h := q.Submit(context.Background(), func(context.Context) error {
			n := running.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		})
		handles = append(handles, h)
	}
	q.Close()

	for _, h := range handles {
		if h.State() != Completed {
			t.Errorf("task %s state = %v after Close", h.ID(), h.State())
		}
	}
	if peak.Load() > workers {
		t.Errorf("peak concurrency %d exceeds %d", peak.Load(), workers)
	}
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue(0)
	if q.Size() != 1 {
		t.Errorf("Size() = %d, want 1", q.Size())
	}
	q.Close()

	h := q.Submit(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(h.Wait(), ErrQueueClosed) {
		t.Errorf("Wait() = %v, want ErrQueueClosed", h.Wait())
	}
	if h.State() != Failed {
		t.Errorf("State() = %v, want failed", h.State())
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{
		Pending: "pending", Running: "running", Completed: "completed",
		Failed: "failed", Cancelled: "cancelled", State(42): "unknown",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
