package monitor

import (
	"context"
	"errors"
	"testing"
)

func TestRefreshCachesComponentStatus(t *testing.T) {
	m := New(0, nil)
	m.Add("store", func(context.Context) error { return nil }, true)
	m.Add("feed", func(context.Context) error { return errors.New("feed stalled") }, false)

	m.Refresh(context.Background())
	status := m.GetStatus()

	if status.Healthy {
		t.Errorf("Healthy = true, want false")
	}
	if !status.Components["store"].OK {
		t.Errorf("store component not ok")
	}
	if got := status.Components["feed"].Error; got != "feed stalled" {
		t.Errorf("feed error = %q, want %q", got, "feed stalled")
	}
	if !m.IsOnline() {
		t.Errorf("IsOnline = false, want true when only non-critical checks fail")
	}
}

func TestIsOnlineFollowsCriticalChecks(t *testing.T) {
	m := New(0, nil)
	m.Add("postgres", func(context.Context) error { return errors.New("down") }, true)
	m.Refresh(context.Background())
	if m.IsOnline() {
		t.Errorf("IsOnline = true, want false")
	}
}
