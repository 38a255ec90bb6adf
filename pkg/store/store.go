//go:generate mockgen -destination=mock/store.go -package=mock tespkg.in/stash/pkg/store Area,Host

package store

import (
	"errors"
	"fmt"
)

// AreaName identifies one of the two storage areas of a host.
type AreaName string

const (
	// Local survives restarts and is shared by every context of an origin.
	Local AreaName = "local"
	// Session is scoped to the contexts of one session.
	Session AreaName = "session"
)

// AreaNames lists the areas in scan order.
var AreaNames = []AreaName{Local, Session}

var (
	ErrNotFound    = errors.New("not found")
	ErrUnknownArea = errors.New("unknown area")
	ErrClosed      = errors.New("host closed")
)

// ParseAreaName validates an area name, the empty name means Local.
func ParseAreaName(s string) (AreaName, error) {
	switch AreaName(s) {
	case "", Local:
		return Local, nil
	case Session:
		return Session, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownArea, s)
}

// Area is a flat string keyed storage region shared with foreign data.
type Area interface {
	// Get returns ErrNotFound when the key is absent.
	Get(key string) (string, error)
	Set(key, val string) error
	// Delete of an absent key is not an error.
	Delete(key string) error
	// Keys lists every key in the area's native enumeration order.
	Keys() ([]string, error)
	Len() (int, error)
}

// Event reports a mutation of one key. A nil OldValue means the key was
// created, a nil NewValue means it was removed.
type Event struct {
	Area     AreaName
	Key      string
	OldValue *string
	NewValue *string
}

// Listener receives events of mutations performed by other contexts.
type Listener func(Event)

// Host gives one execution context access to its storage areas.
//
// A mutation performed through a host's areas is broadcast to the listeners
// of every other context observing the same area, never to the listeners of
// the host that performed it.
type Host interface {
	Area(name AreaName) (Area, error)
	// Subscribe registers l and returns the function that removes it.
	Subscribe(l Listener) (unsubscribe func())
	Close() error
}
