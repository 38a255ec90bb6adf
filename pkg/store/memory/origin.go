// Package memory simulates a storage origin shared by several execution
// contexts in one process.
//
// Every context of an origin sees the same local area. Contexts opened with
// the same session id share a session area. A mutation made through one
// context is reported to the listeners of the other contexts that see the
// mutated area, never to its own.
package memory

import (
	"errors"
	"sync"

	"tespkg.in/stash/pkg/store"
)

type Option func(o *Origin)

// WithLocalArea backs the shared local area with a, for instance a file or
// consul area.
func WithLocalArea(a store.Area) Option {
	return func(o *Origin) {
		o.local = a
	}
}

// Origin owns the storage areas shared by its contexts.
type Origin struct {
	// writeMu serializes read-old/write pairs so events carry the right
	// old value.
	writeMu sync.Mutex

	mu       sync.RWMutex
	local    store.Area
	sessions map[string]store.Area
	contexts map[*Context]struct{}
}

func NewOrigin(opts ...Option) *Origin {
	o := &Origin{
		sessions: map[string]store.Area{},
		contexts: map[*Context]struct{}{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.local == nil {
		o.local = NewArea()
	}
	return o
}

// NewContext opens a context bound to the session sessionID.
func (o *Origin) NewContext(sessionID string) *Context {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.sessions[sessionID]; !ok {
		o.sessions[sessionID] = NewArea()
	}
	c := &Context{
		origin:    o,
		session:   sessionID,
		listeners: map[uint64]store.Listener{},
	}
	o.contexts[c] = struct{}{}
	return c
}

// NewHost returns a context of a fresh private origin.
func NewHost(opts ...Option) *Context {
	return NewOrigin(opts...).NewContext("")
}

func (o *Origin) area(name store.AreaName, session string) (store.Area, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	switch name {
	case store.Local:
		return o.local, nil
	case store.Session:
		return o.sessions[session], nil
	}
	return nil, store.ErrUnknownArea
}

// broadcast delivers ev to the listeners of every context that sees the
// area, except the context src that caused it.
func (o *Origin) broadcast(src *Context, ev store.Event) {
	var targets []store.Listener
	o.mu.RLock()
	for c := range o.contexts {
		if c == src {
			continue
		}
		if ev.Area == store.Session && c.session != src.session {
			continue
		}
		targets = append(targets, c.snapshot()...)
	}
	o.mu.RUnlock()

	for _, l := range targets {
		l(ev)
	}
}

func (o *Origin) detach(c *Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.contexts, c)
}

// Context is one execution context of an origin. It implements store.Host.
type Context struct {
	origin  *Origin
	session string

	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]store.Listener
	closed    bool
}

var _ store.Host = (*Context)(nil)

func (c *Context) SessionID() string {
	return c.session
}

func (c *Context) Area(name store.AreaName) (store.Area, error) {
	inner, err := c.origin.area(name, c.session)
	if err != nil {
		return nil, err
	}
	return &trackedArea{ctx: c, name: name, inner: inner}, nil
}

func (c *Context) Subscribe(l store.Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Close detaches the context from its origin. The shared areas stay.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.listeners = map[uint64]store.Listener{}
	c.mu.Unlock()

	c.origin.detach(c)
	return nil
}

func (c *Context) snapshot() []store.Listener {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]store.Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

// trackedArea reports the mutations made through one context.
type trackedArea struct {
	ctx   *Context
	name  store.AreaName
	inner store.Area
}

func (t *trackedArea) Get(key string) (string, error) { return t.inner.Get(key) }
func (t *trackedArea) Keys() ([]string, error)        { return t.inner.Keys() }
func (t *trackedArea) Len() (int, error)              { return t.inner.Len() }

func (t *trackedArea) Set(key, val string) error {
	t.ctx.origin.writeMu.Lock()
	old, err := lookup(t.inner, key)
	if err != nil {
		t.ctx.origin.writeMu.Unlock()
		return err
	}
	if err := t.inner.Set(key, val); err != nil {
		t.ctx.origin.writeMu.Unlock()
		return err
	}
	t.ctx.origin.writeMu.Unlock()

	if old != nil && *old == val {
		return nil
	}
	t.ctx.origin.broadcast(t.ctx, store.Event{Area: t.name, Key: key, OldValue: old, NewValue: &val})
	return nil
}

func (t *trackedArea) Delete(key string) error {
	t.ctx.origin.writeMu.Lock()
	old, err := lookup(t.inner, key)
	if err != nil {
		t.ctx.origin.writeMu.Unlock()
		return err
	}
	if old == nil {
		t.ctx.origin.writeMu.Unlock()
		return nil
	}
	if err := t.inner.Delete(key); err != nil {
		t.ctx.origin.writeMu.Unlock()
		return err
	}
	t.ctx.origin.writeMu.Unlock()

	t.ctx.origin.broadcast(t.ctx, store.Event{Area: t.name, Key: key, OldValue: old})
	return nil
}

func lookup(a store.Area, key string) (*string, error) {
	v, err := a.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
