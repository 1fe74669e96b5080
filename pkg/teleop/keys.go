package teleop

import (
	"sync"
	"time"

	"github.com/gwillem/armrig/pkg/robot"
)

// DefaultKeyHold is how long a key counts as held after a press. It
// outlasts the usual terminal auto-repeat delay, so a held key does not
// read as released before repeats start.
const DefaultKeyHold = 500 * time.Millisecond

// KeySource supplies the held keys for a tick.
type KeySource interface {
	Snapshot(now time.Time) robot.KeyState
}

// HeldKeys turns key presses into held-key state. Terminals report
// presses and auto-repeats but no releases, so a key stays down until
// hold has passed since its last press.
type HeldKeys struct {
	mu      sync.Mutex
	hold    time.Duration
	pressed map[robot.KeyID]time.Time
}

// NewHeldKeys returns an empty tracker; hold <= 0 uses DefaultKeyHold.
func NewHeldKeys(hold time.Duration) *HeldKeys {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	return &HeldKeys{
		hold:    hold,
		pressed: make(map[robot.KeyID]time.Time),
	}
}

// Press records a press (or auto-repeat) of key at time at.
func (h *HeldKeys) Press(key robot.KeyID, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pressed[key] = at
}

// Release drops key immediately.
func (h *HeldKeys) Release(key robot.KeyID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pressed, key)
}

// Snapshot returns the keys pressed within the hold window before now.
func (h *HeldKeys) Snapshot(now time.Time) robot.KeyState {
	h.mu.Lock()
	defer h.mu.Unlock()

	held := make(robot.KeySet, len(h.pressed))
	for key, at := range h.pressed {
		if now.Sub(at) >= h.hold {
			delete(h.pressed, key)
			continue
		}
		held[key] = struct{}{}
	}
	return held
}
