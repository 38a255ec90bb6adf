package stash

import (
	"errors"
	"math/big"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/store/memory"
	"tespkg.in/stash/pkg/store/mock"
	"tespkg.in/stash/pkg/value"
)

func newClient(t *testing.T) *Client {
	c := New(memory.NewHost())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewKey(t *testing.T) {
	k, err := NewKey[value.String]("app", "theme")
	require.Nil(t, err)
	require.Equal(t, store.Local, k.Area())
	require.Equal(t, "stash/app:theme", k.Ref().WireKey())

	s, err := NewKey[value.String]("app", "theme", store.Session)
	require.Nil(t, err)
	require.NotEqual(t, k.Ref(), s.Ref())

	// the value type takes no part in identity
	other := MustNewKey[value.Number]("app", "theme")
	require.Equal(t, k.Ref(), other.Ref())

	for _, c := range []struct {
		namespace, name string
		area            store.AreaName
	}{
		{"", "theme", store.Local},
		{"app", "", store.Local},
		{"a:pp", "theme", store.Local},
		{"app", "the:me", store.Local},
		{"app", "theme", "disk"},
	} {
		_, err := NewKey[value.String](c.namespace, c.name, c.area)
		require.True(t, errors.Is(err, ErrInvalidKey), "%+v: %v", c, err)
	}

	require.Panics(t, func() { MustNewKey[value.String]("", "x") })
}

func TestZeroKeyIsInvalid(t *testing.T) {
	c := newClient(t)
	var k Key[value.String]
	_, err := Get(c, k)
	require.True(t, errors.Is(err, ErrInvalidKey))
	require.True(t, errors.Is(Save(c, k, value.String("x")), ErrInvalidKey))
	require.True(t, errors.Is(c.Remove(k), ErrInvalidKey))
}

func TestGetSave(t *testing.T) {
	c := newClient(t)
	k := MustNewKey[value.String]("app", "theme")

	_, err := Get(c, k)
	require.True(t, errors.Is(err, ErrNotFound))

	require.Nil(t, Save(c, k, value.String("dark")))
	got, err := Get(c, k)
	require.Nil(t, err)
	require.Equal(t, value.String("dark"), got)

	require.Nil(t, Save(c, k, value.String("light")))
	got, err = Get(c, k)
	require.Nil(t, err)
	require.Equal(t, value.String("light"), got)
}

func TestBigIntSlot(t *testing.T) {
	c := newClient(t)
	k := MustNewKey[value.BigInt]("app", "counter")
	n, _ := new(big.Int).SetString("99999999999999999999", 10)

	require.Nil(t, Save(c, k, value.NewBigInt(n)))
	got, err := Get(c, k)
	require.Nil(t, err)
	require.Equal(t, 0, got.Big().Cmp(n))
}

func TestTypeMismatch(t *testing.T) {
	c := newClient(t)
	require.Nil(t, Save(c, MustNewKey[value.Number]("app", "n"), value.Number(1)))

	_, err := Get(c, MustNewKey[value.String]("app", "n"))
	require.True(t, errors.Is(err, ErrTypeMismatch))

	v, err := Get(c, MustNewKey[value.Value]("app", "n"))
	require.Nil(t, err)
	require.Equal(t, value.Number(1), v)
}

func TestSaveAbsentValue(t *testing.T) {
	c := newClient(t)
	k := MustNewKey[value.Value]("app", "nothing")
	require.NotNil(t, Save(c, k, nil))
	ok, err := c.Has(k)
	require.Nil(t, err)
	require.False(t, ok)
}

func TestLoadRawString(t *testing.T) {
	host := memory.NewHost()
	c := New(host)
	local, err := host.Area(store.Local)
	require.Nil(t, err)
	require.Nil(t, local.Set("stash/legacy:motd", "hello there"))

	v, err := c.Load(MustNewKey[value.String]("legacy", "motd"))
	require.Nil(t, err)
	require.Equal(t, value.String("hello there"), v)
}

func TestNamespaceIsolation(t *testing.T) {
	c := newClient(t)
	k1 := MustNewKey[value.String]("ns1", "k")
	k2 := MustNewKey[value.String]("ns2", "k")
	require.Nil(t, Save(c, k1, value.String("one")))
	require.Nil(t, Save(c, k2, value.String("two")))

	v, err := Get(c, k1)
	require.Nil(t, err)
	require.Equal(t, value.String("one"), v)

	require.Nil(t, c.Clear([]string{"ns1"}))
	ok, err := c.Has(k1)
	require.Nil(t, err)
	require.False(t, ok)

	v, err = Get(c, k2)
	require.Nil(t, err)
	require.Equal(t, value.String("two"), v)
}

func TestRemove(t *testing.T) {
	c := newClient(t)
	k := MustNewKey[value.String]("app", "theme")
	absent := MustNewKey[value.String]("app", "absent")
	require.Nil(t, Save(c, k, value.String("dark")))

	require.Nil(t, c.Remove(absent))
	n, err := c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 1, n)

	require.Nil(t, c.Remove(k, absent))
	require.Nil(t, c.Remove(k))
	n, err = c.Size(nil)
	require.Nil(t, err)
	require.Equal(t, 0, n)
}

func TestHasAndPick(t *testing.T) {
	c := newClient(t)
	a := MustNewKey[value.String]("app", "a")
	b := MustNewKey[value.Number]("app", "b")
	s := MustNewKey[value.Bool]("app", "s", store.Session)
	require.Nil(t, Save(c, a, value.String("x")))
	require.Nil(t, Save(c, s, value.Bool(true)))

	has, err := c.HasAll(a, b, s)
	require.Nil(t, err)
	require.Equal(t, []bool{true, false, true}, has)

	vals, err := c.Pick(a, b, s)
	require.Nil(t, err)
	require.Equal(t, []value.Value{value.String("x"), nil, value.Bool(true)}, vals)
}

func TestSaveMany(t *testing.T) {
	c := newClient(t)
	a := MustNewKey[value.String]("app", "a")
	b := MustNewKey[value.Array]("app", "b")
	require.Nil(t, c.SaveMany(
		PairOf(a, value.String("x")),
		PairOf(b, value.Array{value.Number(1)}),
	))
	vals, err := c.Pick(a, b)
	require.Nil(t, err)
	require.True(t, value.Equal(value.Array{value.String("x"), value.Array{value.Number(1)}}, value.Array(vals)))
}

func TestSaveManyStopsAtFirstFailure(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	host := mock.NewMockHost(mockCtrl)
	area := mock.NewMockArea(mockCtrl)
	host.EXPECT().Area(store.Local).Return(area, nil).AnyTimes()

	ae := area.EXPECT()
	gomock.InOrder(
		ae.Set("stash/app:a", `"1"`).Return(nil),
		ae.Set("stash/app:b", `"2"`).Return(errors.New("quota exceeded")),
	)

	c := New(host)
	err := c.SaveMany(
		PairOf(MustNewKey[value.String]("app", "a"), value.String("1")),
		PairOf(MustNewKey[value.String]("app", "b"), value.String("2")),
		PairOf(MustNewKey[value.String]("app", "c"), value.String("3")),
	)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "pair 1")
}

func TestRemoveAttemptsEveryKey(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	host := mock.NewMockHost(mockCtrl)
	area := mock.NewMockArea(mockCtrl)
	host.EXPECT().Area(store.Local).Return(area, nil).AnyTimes()

	ae := area.EXPECT()
	ae.Delete("stash/app:a").Return(errors.New("io"))
	ae.Delete("stash/app:b").Return(nil)
	ae.Delete("stash/app:c").Return(errors.New("io"))

	c := New(host)
	err := c.Remove(
		MustNewKey[value.String]("app", "a"),
		MustNewKey[value.String]("app", "b"),
		MustNewKey[value.String]("app", "c"),
	)
	require.Len(t, multierr.Errors(err), 2)
}

func TestMergeInto(t *testing.T) {
	c := newClient(t)
	k := MustNewKey[value.Object]("user", "profile")
	require.Nil(t, Save(c, k, value.Object{
		"name":        value.String("Dina"),
		"tags":        value.Array{value.String("a"), value.String("b")},
		"permissions": value.NewSet(value.String("read")),
	}))

	require.Nil(t, Merge(c, k, value.Object{
		"tags":        value.Array{value.String("c")},
		"permissions": value.NewSet(value.String("write")),
	}))

	got, err := Get(c, k)
	require.Nil(t, err)
	require.Equal(t, value.String("Dina"), got["name"])
	require.True(t, value.Equal(value.Array{value.String("c")}, got["tags"]))
	require.True(t, value.Equal(value.NewSet(value.String("write")), got["permissions"]))
}

func TestMergePreconditions(t *testing.T) {
	c := newClient(t)
	missing := MustNewKey[value.Object]("user", "missing")
	err := Merge(c, missing, value.Object{"a": value.Number(1)})
	require.True(t, errors.Is(err, ErrMergeNotFound))
	require.False(t, errors.Is(err, ErrMergeNotObject))

	ok, err := c.Has(missing)
	require.Nil(t, err)
	require.False(t, ok)

	num := MustNewKey[value.Number]("user", "n")
	require.Nil(t, Save(c, num, value.Number(3)))
	err = Merge(c, num, value.Object{"a": value.Number(1)})
	require.True(t, errors.Is(err, ErrMergeNotObject))

	arr := MustNewKey[value.Array]("user", "list")
	require.Nil(t, Save(c, arr, value.Array{}))
	err = c.MergeInto(arr, value.Object{"a": value.Number(1)})
	require.True(t, errors.Is(err, ErrMergeNotObject))

	m := MustNewKey[*value.Map]("user", "map")
	require.Nil(t, Save(c, m, value.NewMap()))
	err = c.MergeInto(m, value.Object{"a": value.Number(1)})
	require.True(t, errors.Is(err, ErrMergeNotObject))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(memory.NewHost(), WithRegisterer(reg))
	k := MustNewKey[value.String]("app", "theme")

	require.Nil(t, Save(c, k, value.String("dark")))
	_, err := Get(c, MustNewKey[value.String]("app", "absent"))
	require.True(t, errors.Is(err, ErrNotFound))

	require.Equal(t, float64(1), testutil.ToFloat64(c.metrics.ops.WithLabelValues("save", resultOK)))
	require.Equal(t, float64(1), testutil.ToFloat64(c.metrics.ops.WithLabelValues("get", resultOK)))

	// a second client on the same registry shares the collectors
	c2 := New(memory.NewHost(), WithRegisterer(reg))
	require.Nil(t, Save(c2, k, value.String("light")))
	require.Equal(t, float64(2), testutil.ToFloat64(c.metrics.ops.WithLabelValues("save", resultOK)))
}

func TestMetricsRegistrationFailureLogged(t *testing.T) {
	reg := prometheus.NewRegistry()
	// same name, different help and labels
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stash",
		Name:      "operations_total",
		Help:      "taken",
	}))
	core, logs := observer.New(zap.ErrorLevel)
	c := New(memory.NewHost(), WithRegisterer(reg), WithLogger(zap.New(core)))

	entries := logs.FilterMessage("register metrics failed, counters are not exported").All()
	require.Len(t, entries, 1)

	// the client keeps working with unexported counters
	k := MustNewKey[value.String]("app", "theme")
	require.Nil(t, Save(c, k, value.String("dark")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.metrics.ops.WithLabelValues("save", resultOK)))
}
