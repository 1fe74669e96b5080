package teleop

import (
	"sync"
	"testing"
	"time"

	"github.com/gwillem/armrig/pkg/robot"
)

func TestHeldKeys_HoldWindow(t *testing.T) {
	t0 := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	h := NewHeldKeys(100 * time.Millisecond)

	h.Press("left", t0)
	h.Press("t", t0.Add(50*time.Millisecond))

	tests := []struct {
		at   time.Duration
		left bool
		t    bool
	}{
		{0, true, false},
		{60 * time.Millisecond, true, true},
		{99 * time.Millisecond, true, true},
		{100 * time.Millisecond, false, true},
		{150 * time.Millisecond, false, false},
	}
	for _, tt := range tests {
		keys := h.Snapshot(t0.Add(tt.at))
		if got := keys.IsDown("left"); got != tt.left {
			t.Errorf("at %v: left down = %v, want %v", tt.at, got, tt.left)
		}
		if got := keys.IsDown("t"); got != tt.t && tt.at >= 50*time.Millisecond {
			t.Errorf("at %v: t down = %v, want %v", tt.at, got, tt.t)
		}
	}
}

func TestHeldKeys_RepeatExtendsHold(t *testing.T) {
	t0 := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	h := NewHeldKeys(100 * time.Millisecond)

	for i := 0; i < 10; i++ {
		h.Press("right", t0.Add(time.Duration(i)*30*time.Millisecond))
	}
	if !h.Snapshot(t0.Add(350 * time.Millisecond)).IsDown("right") {
		t.Error("auto-repeat should keep the key held")
	}

	h.Release("right")
	if h.Snapshot(t0.Add(351 * time.Millisecond)).IsDown("right") {
		t.Error("released key still held")
	}
}

func TestHeldKeys_DefaultHold(t *testing.T) {
	h := NewHeldKeys(0)
	if h.hold != DefaultKeyHold {
		t.Errorf("hold = %v, want %v", h.hold, DefaultKeyHold)
	}
}

func TestHeldKeys_Concurrent(t *testing.T) {
	h := NewHeldKeys(time.Second)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				h.Press(robot.KeyID("left"), now)
				h.Snapshot(now)
			}
		}()
	}
	wg.Wait()

	if !h.Snapshot(now).IsDown("left") {
		t.Error("left should be held")
	}
}

func TestHeldKeys_DefaultHoldBridgesRepeatDelay(t *testing.T) {
	t0 := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	h := NewHeldKeys(0)

	// Typical terminal: first auto-repeat 400ms after the press, then every 30ms.
	h.Press("t", t0)
	for _, at := range []time.Duration{100, 250, 399} {
		if !h.Snapshot(t0.Add(at * time.Millisecond)).IsDown("t") {
			t.Errorf("at %dms: key released before auto-repeat started", at)
		}
	}
	h.Press("t", t0.Add(400*time.Millisecond))
	if !h.Snapshot(t0.Add(430 * time.Millisecond)).IsDown("t") {
		t.Error("key should stay held once auto-repeat starts")
	}
}
