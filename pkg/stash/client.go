// Package stash stores typed values in namespaced slots of a host's local
// and session storage areas.
//
// Values are persisted in the codec wire format under keys derived by package
// keys, next to whatever foreign data the areas already hold. Writes made
// through a client are never reported to that client's own OnChange
// handlers, only to the other contexts of the host.
//
// Operations are not transactional. SaveMany and Remove leave earlier items
// committed when a later one fails, and MergeInto is a read-modify-write that
// a concurrent writer can clobber.
package stash

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/merge"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/value"
)

type Option func(c *Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRegisterer registers the client metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

type Client struct {
	host       store.Host
	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    *metrics

	mu              sync.Mutex
	subs            map[uuid.UUID]*subscription
	unsubscribeHost func()
}

func New(host store.Host, opts ...Option) *Client {
	c := &Client{
		host:   host,
		logger: zap.NewNop(),
		subs:   map[uuid.UUID]*subscription{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics = newMetrics(c.registerer, c.logger)
	return c
}

// Host returns the host the client works on.
func (c *Client) Host() store.Host {
	return c.host
}

func (c *Client) area(r Ref) (store.Area, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	return c.host.Area(r.Area)
}

// Get loads the value of key, ErrNotFound when absent and ErrTypeMismatch
// when the stored value is not a T.
func Get[T value.Value](c *Client, key Key[T]) (T, error) {
	var zero T
	v, err := c.Load(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %s", ErrTypeMismatch, key, v.Kind())
	}
	return t, nil
}

// Save writes val to key, creating or overwriting it.
func Save[T value.Value](c *Client, key Key[T], val T) error {
	return c.Store(key, val)
}

// Merge applies partial to the object stored at key.
func Merge[T value.Value](c *Client, key Key[T], partial value.Object) error {
	return c.MergeInto(key, partial)
}

// Load returns the decoded value of key, ErrNotFound when absent.
func (c *Client) Load(key AnyKey) (v value.Value, err error) {
	defer func() { c.metrics.observe("get", err) }()

	r := key.Ref()
	a, err := c.area(r)
	if err != nil {
		return nil, err
	}
	raw, err := a.Get(r.WireKey())
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", r, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	v, err = codec.Decode(raw)
	if err != nil {
		c.logger.Error("decode failed", zap.Stringer("key", r), zap.Error(err))
		return nil, fmt.Errorf("decode %s: %w", r, err)
	}
	return v, nil
}

// Store encodes val and writes it to key unconditionally.
func (c *Client) Store(key AnyKey, val value.Value) (err error) {
	defer func() { c.metrics.observe("save", err) }()

	r := key.Ref()
	a, err := c.area(r)
	if err != nil {
		return err
	}
	wire, err := codec.Encode(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r, err)
	}
	if err := a.Set(r.WireKey(), wire); err != nil {
		c.logger.Error("save failed", zap.Stringer("key", r), zap.Error(err))
		return err
	}
	return nil
}

// Remove deletes every key, absent keys are ignored. Failures do not stop
// the remaining deletes and are returned combined.
func (c *Client) Remove(keys ...AnyKey) (err error) {
	defer func() { c.metrics.observe("remove", err) }()

	for _, k := range keys {
		err = multierr.Append(err, c.remove(k.Ref()))
	}
	return err
}

func (c *Client) remove(r Ref) error {
	a, err := c.area(r)
	if err != nil {
		return err
	}
	if err := a.Delete(r.WireKey()); err != nil {
		c.logger.Warn("remove failed", zap.Stringer("key", r), zap.Error(err))
		return fmt.Errorf("remove %s: %w", r, err)
	}
	return nil
}

// Has reports whether a value is stored at key, valid or not.
func (c *Client) Has(key AnyKey) (bool, error) {
	r := key.Ref()
	a, err := c.area(r)
	if err != nil {
		return false, err
	}
	_, err = a.Get(r.WireKey())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasAll is Has over several keys, in order.
func (c *Client) HasAll(keys ...AnyKey) ([]bool, error) {
	out := make([]bool, len(keys))
	for i, k := range keys {
		ok, err := c.Has(k)
		if err != nil {
			return nil, err
		}
		out[i] = ok
	}
	return out, nil
}

// Pick loads several keys, in order. Absent keys yield a nil value.
func (c *Client) Pick(keys ...AnyKey) ([]value.Value, error) {
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		v, err := c.Load(k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Pair is a key and the value to save under it.
type Pair struct {
	Key   AnyKey
	Value value.Value
}

// PairOf builds a Pair checked against the key type.
func PairOf[T value.Value](key Key[T], val T) Pair {
	return Pair{Key: key, Value: val}
}

// SaveMany saves the pairs in order and stops at the first failure, earlier
// pairs stay saved.
func (c *Client) SaveMany(pairs ...Pair) error {
	for i, p := range pairs {
		if err := c.Store(p.Key, p.Value); err != nil {
			return fmt.Errorf("pair %d: %w", i, err)
		}
	}
	return nil
}

// MergeInto applies partial onto the object stored at key and saves the
// result. It fails with ErrMergeNotFound when nothing is stored and with
// ErrMergeNotObject when the stored value is not an object.
func (c *Client) MergeInto(key AnyKey, partial value.Object) (err error) {
	defer func() { c.metrics.observe("merge", err) }()

	r := key.Ref()
	current, err := c.Load(r)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", r, ErrMergeNotFound)
	}
	if err != nil {
		return err
	}
	target, ok := current.(value.Object)
	if !ok {
		return fmt.Errorf("%s holds %s: %w", r, current.Kind(), ErrMergeNotObject)
	}
	return c.Store(r, merge.Merge(target, partial))
}

// Close drops every OnChange subscription and detaches from the host. The
// host itself stays open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs = map[uuid.UUID]*subscription{}
	if c.unsubscribeHost != nil {
		c.unsubscribeHost()
		c.unsubscribeHost = nil
	}
	return nil
}
