package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestShutdownStopsWorkersThenRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	stopped := make(chan struct{})
	m.Go("loop", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	})
	m.Register("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.Register("second", func(context.Context) error {
		select {
		case <-stopped:
		default:
			t.Errorf("hook ran before worker stopped")
		}
		order = append(order, "second")
		return nil
	})

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("order = %v, want [second first]", order)
	}
}

func TestShutdownJoinsHookErrors(t *testing.T) {
	m := New(time.Second, nil)
	boom := errors.New("boom")
	m.Register("a", func(context.Context) error { return boom })
	m.Register("b", func(context.Context) error { return nil })

	if err := m.Shutdown(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Shutdown error = %v, want %v", err, boom)
	}
}
