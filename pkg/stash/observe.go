package stash

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/keys"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/value"
)

// Change describes a mutation of a slot made by another context. A nil
// OldValue means the slot was created, a nil NewValue that it was removed.
type Change struct {
	Key      Ref
	NewValue value.Value
	OldValue value.Value
	Area     store.AreaName
}

// Target selects the wire keys a subscription observes. A nil Target
// observes every key stash owns.
type Target interface {
	match(wire string) bool
}

type keyTarget map[string]struct{}

func (t keyTarget) match(wire string) bool {
	_, ok := t[wire]
	return ok
}

type namespaceTarget []string

func (t namespaceTarget) match(wire string) bool {
	for _, p := range t {
		if strings.HasPrefix(wire, p) {
			return true
		}
	}
	return false
}

// Keys observes the exact keys given. The area of a key does not take part
// in the match.
func Keys(ks ...AnyKey) Target {
	t := make(keyTarget, len(ks))
	for _, k := range ks {
		t[k.Ref().WireKey()] = struct{}{}
	}
	return t
}

// Namespaces observes every key of the given namespaces.
func Namespaces(namespaces ...string) Target {
	t := make(namespaceTarget, 0, len(namespaces))
	for _, ns := range namespaces {
		t = append(t, keys.NamespacePrefix(ns))
	}
	return t
}

type subscription struct {
	fn     func(Change)
	target Target
}

func (s *subscription) match(wire string) bool {
	return s.target == nil || s.target.match(wire)
}

// OnChange calls fn for each change of a key selected by target made by
// another context. The returned function removes the subscription and may
// be called more than once.
func (c *Client) OnChange(fn func(Change), target Target) (unsubscribe func()) {
	id := uuid.New()

	c.mu.Lock()
	c.subs[id] = &subscription{fn: fn, target: target}
	if c.unsubscribeHost == nil {
		c.unsubscribeHost = c.host.Subscribe(c.dispatch)
	}
	c.mu.Unlock()

	c.logger.Debug("subscribed", zap.Stringer("id", id))

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			c.logger.Debug("unsubscribed", zap.Stringer("id", id))
		})
	}
}

func (c *Client) dispatch(ev store.Event) {
	if ev.Key == "" || !keys.Owned(ev.Key) {
		c.metrics.change(changeIgnored)
		return
	}

	c.mu.Lock()
	var fns []func(Change)
	for _, s := range c.subs {
		if s.match(ev.Key) {
			fns = append(fns, s.fn)
		}
	}
	c.mu.Unlock()
	if len(fns) == 0 {
		c.metrics.change(changeIgnored)
		return
	}

	ns, name, ok := keys.Parse(ev.Key)
	if !ok {
		c.metrics.change(changeIgnored)
		return
	}
	ch := Change{
		Key:  Ref{Namespace: ns, Name: name, Area: ev.Area},
		Area: ev.Area,
	}
	var err error
	if ch.OldValue, err = decodeRaw(ev.OldValue); err == nil {
		ch.NewValue, err = decodeRaw(ev.NewValue)
	}
	if err != nil {
		c.logger.Warn("dropping undecodable change", zap.Stringer("key", ch.Key), zap.Error(err))
		c.metrics.change(changeDropped)
		return
	}

	for _, fn := range fns {
		fn(ch)
	}
	c.metrics.change(changeDelivered)
}

func decodeRaw(raw *string) (value.Value, error) {
	if raw == nil {
		return nil, nil
	}
	return codec.Decode(*raw)
}
