package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJobLifecycle(t *testing.T) {
	m := NewManager(nil)
	j := m.Create("user-1")
	if got, ok := m.Get(j.ID); !ok || got != j {
		t.Fatalf("job not registered")
	}
	if st := j.Status(); st.State != StateQueued || len(st.Messages) != 0 {
		t.Fatalf("unexpected initial status %+v", st)
	}

	j.Start()
	j.UpdateOutput("Outline ready: 2 chapters")
	j.Finish("book-9")

	select {
	case <-j.Done():
	default:
		t.Fatalf("done channel not closed")
	}
	st := j.Status()
	if st.State != StateCompleted || st.BookID != "book-9" || len(st.Messages) != 3 {
		t.Fatalf("unexpected final status %+v", st)
	}
	if st.Messages[1].Type != TypeProgress || st.Messages[1].Status != StateGenerating {
		t.Fatalf("unexpected progress message %+v", st.Messages[1])
	}
	if last := st.Messages[2]; last.Type != TypeState || last.BookID != "book-9" {
		t.Fatalf("unexpected final message %+v", last)
	}

	j.Fail(errors.New("late"))
	if st := j.Status(); st.State != StateCompleted || st.Error != "" {
		t.Fatalf("finished job changed state: %+v", st)
	}
}

func TestSubscribeStreamsUntilFinished(t *testing.T) {
	j := NewManager(nil).Create("u")
	j.Start()

	history, updates, cancel := j.Subscribe()
	defer cancel()
	if len(history) != 1 {
		t.Fatalf("expected one history message, got %d", len(history))
	}

	j.UpdateOutput("working")
	j.Fail(errors.New("model unavailable"))

	var got []Message
	for msg := range updates {
		got = append(got, msg)
	}
	if len(got) != 2 || got[0].Message != "working" || got[1].Status != StateError {
		t.Fatalf("unexpected stream %+v", got)
	}
	if st := j.Status(); st.Error != "model unavailable" {
		t.Fatalf("error not recorded: %+v", st)
	}
}

func TestSubscribeAfterFinish(t *testing.T) {
	j := NewManager(nil).Create("u")
	j.Finish("b")
	history, updates, cancel := j.Subscribe()
	defer cancel()
	if len(history) != 1 {
		t.Fatalf("expected history, got %+v", history)
	}
	if _, ok := <-updates; ok {
		t.Fatalf("expected a closed channel")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	j := NewManager(nil).Create("u")
	_, updates, cancel := j.Subscribe()
	cancel()
	cancel()
	j.UpdateOutput("after cancel")
	if _, ok := <-updates; ok {
		t.Fatalf("cancelled subscription still delivering")
	}
}

func TestPrune(t *testing.T) {
	m := NewManager(nil)
	old := m.Create("u")
	old.StartTime = time.Now().Add(-2 * time.Hour)
	old.Finish("b")
	running := m.Create("u")
	running.StartTime = time.Now().Add(-2 * time.Hour)
	fresh := m.Create("u")
	fresh.Finish("c")

	if n := m.Prune(time.Now().Add(-time.Hour)); n != 1 {
		t.Fatalf("pruned %d jobs, want 1", n)
	}
	if _, ok := m.Get(old.ID); ok {
		t.Fatalf("old finished job kept")
	}
	if _, ok := m.Get(running.ID); !ok {
		t.Fatalf("running job pruned")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Fatalf("fresh job pruned")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
