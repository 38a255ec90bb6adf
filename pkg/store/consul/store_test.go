package consul

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/require"
	"tespkg.in/stash/pkg/store"
)

func getConsulDsn(t *testing.T) string {
	consulDsn := os.Getenv("CONSUL_DSN")
	if consulDsn == "" {
		t.Skip("skipping consul test case, since CONSUL_DSN env not found")
	}
	return consulDsn
}

func TestNewArea(t *testing.T) {
	dsn := getConsulDsn(t)
	u, err := url.Parse(dsn)
	require.Nil(t, err)

	s, err := NewArea(dsn)
	require.Nil(t, err)
	ss := s.(*cs)
	require.Equal(t, strings.Trim(u.Path, "/"), ss.prefix)
}

func newConsulArea(t *testing.T) *cs {
	dsn := getConsulDsn(t)
	s, err := NewArea(dsn)
	require.Nil(t, err)
	return s.(*cs)
}

func TestSetGet(t *testing.T) {
	cs := newConsulArea(t)
	err := cs.Set("test/foo", "bar")
	require.Nil(t, err)

	val, err := cs.Get("test/foo")
	require.Nil(t, err)
	require.Equal(t, "bar", val)
}

func TestGetNotFound(t *testing.T) {
	cs := newConsulArea(t)
	_, err := cs.Get("test/hello")
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestDeleteAbsent(t *testing.T) {
	cs := newConsulArea(t)
	require.Nil(t, cs.Delete("test/absent"))
}

func TestKeysInCreationOrder(t *testing.T) {
	cs := newConsulArea(t)
	for _, k := range []string{"order/b", "order/a", "order/c"} {
		require.Nil(t, cs.Delete(k))
	}
	for _, k := range []string{"order/b", "order/a", "order/c"} {
		require.Nil(t, cs.Set(k, k))
	}

	keys, err := cs.Keys()
	require.Nil(t, err)
	var got []string
	for _, k := range keys {
		if strings.HasPrefix(k, "order/") {
			got = append(got, k)
		}
	}
	require.Equal(t, []string{"order/b", "order/a", "order/c"}, got)

	n, err := cs.Len()
	require.Nil(t, err)
	require.Equal(t, len(keys), n)
}

func TestFromKVPair(t *testing.T) {
	val, err := fromKVPair(toKVPair("k", "v"))
	require.Nil(t, err)
	require.Equal(t, "v", val)

	_, err = fromKVPair(&api.KVPair{Key: "k", Flags: 0x2, Value: []byte("v")})
	require.True(t, errors.Is(err, errUnsupportedFlag))
}

func TestExtractKey(t *testing.T) {
	require.Equal(t, "stash/app:theme", extractKey("prefix", "prefix/stash/app:theme"))
	require.Equal(t, "stash/app:theme", extractKey("", "stash/app:theme"))
}

func TestNewAreaInvalidScheme(t *testing.T) {
	_, err := NewArea("consul://localhost:8500/prefix")
	require.NotNil(t, err)
}
