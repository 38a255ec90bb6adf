package etcd

import (
	"context"
	"sync"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/store/memory"
)

type Option func(h *Host)

func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithWatchLimiter throttles re-establishing a broken watch.
func WithWatchLimiter(l *rate.Limiter) Option {
	return func(h *Host) {
		h.limiter = l
	}
}

// Host keeps the local area in etcd and reports writes made by other
// processes through an etcd watch. The session area is private to the
// process.
type Host struct {
	local   *es
	session *memory.Area
	logger  *zap.Logger
	limiter *rate.Limiter

	// writeMu is held across a write and the bookkeeping of its revision,
	// the watcher takes it before checking a revision.
	writeMu sync.Mutex
	own     map[int64]struct{}

	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]store.Listener
	watching  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

var _ store.Host = (*Host)(nil)

// NewHost connects to etcd, dsn is etcd://[user:pass@]host:2379/prefix.
func NewHost(dsn string, opts ...Option) (*Host, error) {
	local, err := newArea(dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Host{
		local:     local,
		session:   memory.NewArea(),
		logger:    zap.NewNop(),
		limiter:   rate.NewLimiter(1, 10),
		own:       map[int64]struct{}{},
		listeners: map[uint64]store.Listener{},
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Host) Area(name store.AreaName) (store.Area, error) {
	switch name {
	case store.Local:
		return &ownArea{es: h.local, host: h}, nil
	case store.Session:
		return h.session, nil
	}
	return nil, store.ErrUnknownArea
}

// Subscribe starts the watch on first use.
func (h *Host) Subscribe(l store.Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.listeners[id] = l
	if !h.watching {
		h.watching = true
		go h.watch()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

func (h *Host) Close() error {
	h.cancel()
	h.mu.Lock()
	watching := h.watching
	h.mu.Unlock()
	if watching {
		<-h.done
	}
	return h.local.Close()
}

// recordOwn must be called with writeMu held. Nothing is recorded until
// the watch runs.
func (h *Host) recordOwn(rev int64) {
	h.mu.Lock()
	watching := h.watching
	h.mu.Unlock()
	if watching {
		h.own[rev] = struct{}{}
	}
}

// isOwn reports whether rev was written by this host. Events arrive in
// revision order, so every recorded revision up to rev is forgotten.
func (h *Host) isOwn(rev int64) bool {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	_, ok := h.own[rev]
	h.forgetOwnLocked(rev)
	return ok
}

// forgetOwn drops recorded revisions the watch will never deliver.
func (h *Host) forgetOwn(upTo int64) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.forgetOwnLocked(upTo)
}

func (h *Host) forgetOwnLocked(upTo int64) {
	for rev := range h.own {
		if rev <= upTo {
			delete(h.own, rev)
		}
	}
}

func (h *Host) watch() {
	defer close(h.done)

	var lastRev int64
	for {
		if err := h.limiter.Wait(h.ctx); err != nil {
			return
		}
		var opts = []clientv3.OpOption{clientv3.WithPrefix(), clientv3.WithPrevKV(), clientv3.WithCreatedNotify()}
		if lastRev > 0 {
			opts = append(opts, clientv3.WithRev(lastRev+1))
		}
		wch := h.local.db.Watch(clientv3.WithRequireLeader(h.ctx), h.local.keyPrefix(), opts...)
		for resp := range wch {
			if resp.Created && lastRev == 0 {
				// the stream starts after the header revision, earlier
				// writes made while it was being opened never show up
				h.forgetOwn(resp.Header.Revision)
			}
			if resp.CompactRevision > 0 {
				h.logger.Warn("watch compacted, resuming from compact revision",
					zap.Int64("compactRevision", resp.CompactRevision))
				lastRev = resp.CompactRevision - 1
				h.forgetOwn(lastRev)
			}
			if err := resp.Err(); err != nil {
				h.logger.Warn("watch failed", zap.Error(err))
				break
			}
			for _, ev := range resp.Events {
				h.dispatch(ev)
			}
			if resp.Header.Revision > lastRev {
				lastRev = resp.Header.Revision
			}
		}
		select {
		case <-h.ctx.Done():
			return
		default:
			h.logger.Info("re-establishing watch", zap.String("prefix", h.local.prefix), zap.Int64("revision", lastRev))
		}
	}
}

func (h *Host) dispatch(ev *clientv3.Event) {
	if h.isOwn(ev.Kv.ModRevision) {
		return
	}
	out := store.Event{
		Area: store.Local,
		Key:  h.local.trimKey(string(ev.Kv.Key)),
	}
	if ev.PrevKv != nil {
		old, err := decodeVal(ev.PrevKv.Value)
		if err != nil {
			h.logger.Warn("skipping undecodable previous value", zap.String("key", out.Key), zap.Error(err))
		} else {
			out.OldValue = &old
		}
	}
	if ev.Type == mvccpb.PUT {
		val, err := decodeVal(ev.Kv.Value)
		if err != nil {
			h.logger.Warn("skipping undecodable event", zap.String("key", out.Key), zap.Error(err))
			return
		}
		if out.OldValue != nil && *out.OldValue == val {
			return
		}
		out.NewValue = &val
	}

	h.mu.Lock()
	targets := make([]store.Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		targets = append(targets, l)
	}
	h.mu.Unlock()

	for _, l := range targets {
		l(out)
	}
}

// ownArea records the revisions of the writes it makes.
type ownArea struct {
	*es
	host *Host
}

func (a *ownArea) Set(key, val string) error {
	a.host.writeMu.Lock()
	defer a.host.writeMu.Unlock()

	rev, err := a.es.put(key, val)
	if err != nil {
		return err
	}
	a.host.recordOwn(rev)
	return nil
}

func (a *ownArea) Delete(key string) error {
	a.host.writeMu.Lock()
	defer a.host.writeMu.Unlock()

	rev, deleted, err := a.es.del(key)
	if err != nil {
		return err
	}
	if deleted {
		a.host.recordOwn(rev)
	}
	return nil
}
