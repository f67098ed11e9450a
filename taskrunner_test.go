package restapir

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestTaskRunner_RunsAllTasks(t *testing.T) {
	tr := NewTaskRunner(context.Background(), 2)
	var count int32
	for i := 0; i < 10; i++ {
		tr.Go(func() error {
			atomic.AddInt32(&count, 1)
			return nil
		})
	}
	if err := tr.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if count != 10 {
		t.Fatalf("expected 10 tasks to run, got %d", count)
	}
}

func TestTaskRunner_PropagatesFirstError(t *testing.T) {
	tr := NewTaskRunner(context.Background(), 0)
	wantErr := errTest("boom")
	tr.Go(func() error { return wantErr })
	if err := tr.Wait(); err != wantErr {
		t.Fatalf("expected wantErr, got %v", err)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
