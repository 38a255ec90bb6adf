package stash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/store/memory"
	"tespkg.in/stash/pkg/value"
)

func seed(t *testing.T, c *Client) {
	require.Nil(t, c.SaveMany(
		PairOf(MustNewKey[value.String]("ns1", "a"), value.String("1")),
		PairOf(MustNewKey[value.String]("ns2", "c"), value.String("3")),
		PairOf(MustNewKey[value.String]("ns1", "b", store.Session), value.String("2s")),
		PairOf(MustNewKey[value.String]("ns1", "b"), value.String("2")),
	))
}

func TestQueryEntriesByNamespace(t *testing.T) {
	c := newClient(t)
	require.Nil(t, c.SaveMany(
		PairOf(MustNewKey[value.String]("ns1", "a"), value.String("1")),
		PairOf(MustNewKey[value.String]("ns1", "b"), value.String("2")),
		PairOf(MustNewKey[value.String]("ns2", "c"), value.String("3")),
	))

	entries, err := c.QueryEntries([]string{"ns1"})
	require.Nil(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, "ns1", e.Key.Namespace)
	}
}

func TestQueryEntriesOrder(t *testing.T) {
	c := newClient(t)
	seed(t, c)

	entries, err := c.QueryEntries(nil)
	require.Nil(t, err)
	var got []string
	for _, e := range entries {
		require.Equal(t, e.Area, e.Key.Area)
		got = append(got, e.Key.String())
	}
	require.Equal(t, []string{
		"local/ns1:a",
		"local/ns2:c",
		"local/ns1:b",
		"session/ns1:b",
	}, got)

	entries, err = c.QueryEntries([]string{})
	require.Nil(t, err)
	require.Empty(t, entries)

	entries, err = c.QueryEntries([]string{"ns2", "absent"})
	require.Nil(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, value.String("3"), entries[0].Value)
}

func TestQueryIgnoresForeignKeys(t *testing.T) {
	host := memory.NewHost()
	c := New(host)
	local, err := host.Area(store.Local)
	require.Nil(t, err)
	require.Nil(t, local.Set("theme", "dark"))
	require.Nil(t, local.Set("stash/nodelimiter", "x"))
	require.Nil(t, local.Set("stash/ns1x:k", `"other namespace"`))
	require.Nil(t, Save(c, MustNewKey[value.String]("ns1", "k"), value.String("mine")))

	entries, err := c.QueryEntries([]string{"ns1"})
	require.Nil(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, value.String("mine"), entries[0].Value)

	n, err := c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 2, n)
}

func TestQueryEntriesDecodeFailure(t *testing.T) {
	host := memory.NewHost()
	c := New(host)
	local, err := host.Area(store.Local)
	require.Nil(t, err)
	require.Nil(t, local.Set("stash/app:bad", `{"tag":"date","payload":"2020"}`))

	_, err = c.QueryEntries(nil)
	require.True(t, errors.Is(err, codec.ErrUnknownTag))

	// the entry can still be counted and cleared
	n, err := c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 1, n)
	require.Nil(t, c.Clear(nil))
	n, err = c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 0, n)
}

func TestClear(t *testing.T) {
	host := memory.NewHost()
	c := New(host)
	seed(t, c)
	local, err := host.Area(store.Local)
	require.Nil(t, err)
	session, err := host.Area(store.Session)
	require.Nil(t, err)
	require.Nil(t, local.Set("foreign", "keep"))
	require.Nil(t, session.Set("foreign", "keep"))

	require.Nil(t, c.Clear([]string{}))
	n, err := c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 4, n)

	require.Nil(t, c.Clear([]string{"ns2"}))
	n, err = c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 3, n)

	require.Nil(t, c.Clear(nil))
	n, err = c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 0, n)

	v, err := local.Get("foreign")
	require.Nil(t, err)
	require.Equal(t, "keep", v)
	v, err = session.Get("foreign")
	require.Nil(t, err)
	require.Equal(t, "keep", v)
}

func TestSize(t *testing.T) {
	c := newClient(t)
	seed(t, c)

	for _, tc := range []struct {
		namespaces []string
		expected   int
	}{
		{nil, 4},
		{[]string{}, 0},
		{[]string{"ns1"}, 3},
		{[]string{"ns1", "ns2"}, 4},
		{[]string{"ns3"}, 0},
	} {
		n, err := c.Size(tc.namespaces)
		require.Nil(t, err)
		require.Equal(t, tc.expected, n, "%v", tc.namespaces)
	}
}

func TestForEach(t *testing.T) {
	c := newClient(t)
	seed(t, c)

	var seen []Ref
	err := c.ForEach(func(e Entry) error {
		seen = append(seen, e.Key)
		return nil
	}, []string{"ns1"})
	require.Nil(t, err)
	require.Len(t, seen, 3)

	stop := errors.New("stop")
	calls := 0
	err = c.ForEach(func(e Entry) error {
		calls++
		return stop
	}, nil)
	require.Equal(t, stop, err)
	require.Equal(t, 1, calls)
}
