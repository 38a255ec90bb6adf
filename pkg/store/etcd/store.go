package etcd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"tespkg.in/stash/pkg/store"
)

const (
	defaultDialTimeout = 2 * time.Second
	defaultGetTimeout  = 5 * time.Second
	etcdSchema         = "etcd"

	flagString byte = 0x1
)

var errInvalidVal = errors.New("invalid val")

// es is an etcd backed area, every key lives under prefix.
type es struct {
	prefix string

	db *clientv3.Client
}

var _ store.Area = (*es)(nil)

func (s *es) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultGetTimeout)
	defer cancel()

	r, err := s.db.Get(ctx, s.fullKey(key))
	if err != nil {
		return "", err
	}
	if r.Count == 0 {
		return "", store.ErrNotFound
	}
	return decodeVal(r.Kvs[0].Value)
}

func (s *es) Set(key, val string) error {
	_, err := s.put(key, val)
	return err
}

// put returns the revision of the write.
func (s *es) put(key, val string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultGetTimeout)
	defer cancel()

	r, err := s.db.Put(ctx, s.fullKey(key), string(encodeVal(val)))
	if err != nil {
		return 0, err
	}
	return r.Header.Revision, nil
}

func (s *es) Delete(key string) error {
	_, _, err := s.del(key)
	return err
}

// del returns the revision of the delete and whether a key was removed.
func (s *es) del(key string) (int64, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultGetTimeout)
	defer cancel()

	r, err := s.db.Delete(ctx, s.fullKey(key))
	if err != nil {
		return 0, false, err
	}
	return r.Header.Revision, r.Deleted > 0, nil
}

// Keys lists keys by creation revision, the closest etcd has to insertion
// order.
func (s *es) Keys() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultGetTimeout)
	defer cancel()

	r, err := s.db.Get(ctx, s.keyPrefix(),
		clientv3.WithPrefix(),
		clientv3.WithKeysOnly(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortAscend),
	)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(r.Kvs))
	for _, kv := range r.Kvs {
		keys = append(keys, s.trimKey(string(kv.Key)))
	}
	return keys, nil
}

func (s *es) Len() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultGetTimeout)
	defer cancel()

	r, err := s.db.Get(ctx, s.keyPrefix(), clientv3.WithPrefix(), clientv3.WithCountOnly())
	if err != nil {
		return 0, err
	}
	return int(r.Count), nil
}

func (s *es) Close() error {
	return s.db.Close()
}

func (s *es) keyPrefix() string {
	return s.prefix + "/"
}

func (s *es) fullKey(key string) string {
	return s.keyPrefix() + key
}

func (s *es) trimKey(full string) string {
	return strings.TrimPrefix(full, s.keyPrefix())
}

// Add a byte in front of the val to represent the val type for the serialization purpose.
func encodeVal(val string) []byte {
	res := make([]byte, 0, len(val)+1)
	res = append(res, flagString)
	return append(res, val...)
}

func decodeVal(bVal []byte) (string, error) {
	if len(bVal) == 0 {
		return "", errInvalidVal
	}
	switch flag := bVal[0]; flag {
	case flagString:
		return string(bVal[1:]), nil
	default:
		return "", fmt.Errorf("%w: unsupported flag %0x", errInvalidVal, flag)
	}
}

func newArea(dsn string) (*es, error) {
	// E.g for dsn: etcd://localhost:2379/prefix/for/key
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	if u.Scheme != etcdSchema {
		return nil, fmt.Errorf("invalid schema, excepted: %v, got: %v", etcdSchema, u.Scheme)
	}
	prefix := strings.Trim(u.Path, "/")
	if prefix == "" {
		return nil, errors.New("invalid path, got empty value")
	}

	password, _ := u.User.Password()
	cfg := clientv3.Config{
		Endpoints:   []string{u.Host},
		DialTimeout: defaultDialTimeout,
		Username:    u.User.Username(),
		Password:    password,
	}

	db, err := clientv3.New(cfg)
	if err != nil {
		return nil, err
	}

	return &es{
		prefix: prefix,
		db:     db,
	}, nil
}

// NewArea returns an etcd area without change feed.
func NewArea(dsn string) (store.Area, error) {
	return newArea(dsn)
}
