package consul

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/hashicorp/consul/api"
	"tespkg.in/stash/pkg/store"
)

const (
	flagString uint64 = 0x1
)

var errUnsupportedFlag = errors.New("unsupported value flag")

// cs is a consul kv backed area, every key lives under prefix.
type cs struct {
	prefix string

	client *api.Client
}

var _ store.Area = (*cs)(nil)

func (c *cs) Set(key, val string) error {
	if key == "" {
		return errors.New("empty key not allowed")
	}
	if _, err := c.client.KV().Put(toKVPair(c.fullKey(key), val), nil); err != nil {
		return err
	}
	return nil
}

func (c *cs) Get(key string) (string, error) {
	pair, _, err := c.client.KV().Get(c.fullKey(key), nil)
	if err != nil {
		return "", err
	}
	if pair == nil {
		return "", store.ErrNotFound
	}
	return fromKVPair(pair)
}

func (c *cs) Delete(key string) error {
	_, err := c.client.KV().Delete(c.fullKey(key), nil)
	return err
}

// Keys lists keys by creation index, the closest consul has to insertion
// order.
func (c *cs) Keys() ([]string, error) {
	pairs, _, err := c.client.KV().List(c.keyPrefix(), nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].CreateIndex < pairs[j].CreateIndex
	})
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, extractKey(c.prefix, p.Key))
	}
	return keys, nil
}

func (c *cs) Len() (int, error) {
	keys, _, err := c.client.KV().Keys(c.keyPrefix(), "", nil)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (c *cs) keyPrefix() string {
	if c.prefix == "" {
		return ""
	}
	return c.prefix + "/"
}

func (c *cs) fullKey(key string) string {
	return c.keyPrefix() + key
}

func toKVPair(key, val string) *api.KVPair {
	return &api.KVPair{
		Key:   key,
		Flags: flagString,
		Value: []byte(val),
	}
}

func fromKVPair(p *api.KVPair) (string, error) {
	switch p.Flags {
	case flagString:
		return string(p.Value), nil
	default:
		return "", fmt.Errorf("%w %0x %s", errUnsupportedFlag, p.Flags, p.Key)
	}
}

func extractKey(prefix, key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
}

// NewArea returns a consul kv area, dsn is http(s)://host:8500/prefix.
func NewArea(dsn string) (store.Area, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid schema, excepted: http or https, got: %v", u.Scheme)
	}

	client, err := api.NewClient(&api.Config{
		Address: u.Host,
		Scheme:  u.Scheme,
	})
	if err != nil {
		return nil, err
	}

	prefix := strings.Trim(u.Path, "/")
	return &cs{
		client: client,
		prefix: prefix,
	}, nil
}
