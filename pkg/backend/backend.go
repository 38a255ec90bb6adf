// Package backend opens a storage host from a data source name.
package backend

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/store/consul"
	"tespkg.in/stash/pkg/store/etcd"
	"tespkg.in/stash/pkg/store/file"
	"tespkg.in/stash/pkg/store/memory"
)

const DefaultDsn = "mem://"

type Option func(o *options)

type options struct {
	logger *zap.Logger
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open returns the host for dsn, one of
//
//	mem://
//	file://path/to/data.yaml
//	etcd://[user:pass@]host:2379/prefix
//	http(s)://host:8500/prefix (consul)
//
// sessionID scopes the session area of in-process hosts.
func Open(dsn, sessionID string, opts ...Option) (store.Host, error) {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid store dsn: %v", dsn)
	}
	switch strings.ToLower(u.Scheme) {
	case "", "mem":
		return memory.NewOrigin().NewContext(sessionID), nil
	case "file":
		a, err := file.NewArea(dsn)
		if err != nil {
			return nil, fmt.Errorf("initiate file store failed: %v", err)
		}
		return withCloser(memory.NewOrigin(memory.WithLocalArea(a)).NewContext(sessionID), a), nil
	case "etcd":
		h, err := etcd.NewHost(dsn, etcd.WithLogger(o.logger.Named("etcd")))
		if err != nil {
			return nil, fmt.Errorf("initiate etcd store failed: %v", err)
		}
		return h, nil
	case "http", "https":
		a, err := consul.NewArea(dsn)
		if err != nil {
			return nil, fmt.Errorf("initiate consul store failed: %v", err)
		}
		return memory.NewOrigin(memory.WithLocalArea(a)).NewContext(sessionID), nil
	default:
		return nil, fmt.Errorf("unknown store schema: %v", u.Scheme)
	}
}

type closingHost struct {
	store.Host
	closer io.Closer
}

func withCloser(h store.Host, c io.Closer) store.Host {
	return &closingHost{Host: h, closer: c}
}

func (h *closingHost) Close() error {
	if err := h.Host.Close(); err != nil {
		return err
	}
	return h.closer.Close()
}
