package keys

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		namespace, name string
		expectedErr     error
	}{
		{"app", "theme", nil},
		{"app.v2", "user/settings", nil},
		{"", "theme", ErrEmptyNamespace},
		{"app", "", ErrEmptyName},
		{"a:b", "theme", ErrDelimiter},
		{"app", "th:eme", ErrDelimiter},
	}
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			err := Validate(c.namespace, c.name)
			if c.expectedErr == nil {
				require.Nil(t, err)
				return
			}
			require.True(t, errors.Is(err, c.expectedErr), "got %v", err)
		})
	}
}

func TestDeriveParse(t *testing.T) {
	wire := Derive("app", "theme")
	require.Equal(t, "stash/app:theme", wire)

	ns, name, ok := Parse(wire)
	require.True(t, ok)
	require.Equal(t, "app", ns)
	require.Equal(t, "theme", name)

	ns, name, ok = Parse(Derive("a/b", "c/d"))
	require.True(t, ok)
	require.Equal(t, "a/b", ns)
	require.Equal(t, "c/d", name)
}

func TestParseForeign(t *testing.T) {
	for _, wire := range []string{
		"",
		"theme",
		"other/app:theme",
		"stash",
		"stash/",
		"stash/app",
		"stash/:theme",
		"stash/app:",
		"xstash/app:theme",
	} {
		_, _, ok := Parse(wire)
		require.False(t, ok, wire)
	}
}

func TestPrefixes(t *testing.T) {
	require.Equal(t, "stash/", OwnerPrefix())
	require.Equal(t, "stash/app:", NamespacePrefix("app"))
	require.True(t, Owned("stash/app:theme"))
	require.False(t, Owned("app:theme"))
}
