package robot

import "strings"

// KeyID names a key the way bubbletea reports it ("left", "z", "e").
type KeyID string

// ParseKey normalises a key name.
func ParseKey(s string) KeyID {
	return KeyID(strings.ToLower(strings.TrimSpace(s)))
}

// KeyState is a per-tick snapshot of held keys.
type KeyState interface {
	IsDown(key KeyID) bool
}

// KeySet is a KeyState backed by a set.
type KeySet map[KeyID]struct{}

// NewKeySet returns a KeySet holding the given keys.
func NewKeySet(keys ...KeyID) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// IsDown reports whether key is held.
func (s KeySet) IsDown(key KeyID) bool {
	_, ok := s[key]
	return ok
}
