package main

import (
	"bytes"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(dsn string, args ...string) (string, error) {
	c := cmd()
	out := &bytes.Buffer{}
	c.SetOutput(out)
	c.SetArgs(append([]string{"--dsn", dsn}, args...))
	err := c.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dsn := "file://" + filepath.Join(t.TempDir(), "stash.yaml")

	cases := []struct {
		args        []string
		expected    string
		expectedErr bool
	}{
		{args: []string{"set", "app", "theme", `"dark"`}},
		{args: []string{"get", "app", "theme"}, expected: "\"dark\"\n"},
		{args: []string{"set", "app", "prefs", `{"a":1,"b":{"c":2}}`}},
		{args: []string{"merge", "app", "prefs", `{"b":{"c":3}}`}},
		{args: []string{"get", "app", "prefs"}, expected: "{\"a\":1,\"b\":{\"c\":3}}\n"},
		{args: []string{"merge", "app", "theme", `{"b":1}`}, expectedErr: true},
		{args: []string{"merge", "app", "prefs", `[1]`}, expectedErr: true},
		{args: []string{"set", "other", "n", `7`}},
		{args: []string{"size"}, expected: "3\n"},
		{args: []string{"size", "app"}, expected: "2\n"},
		{args: []string{"ls", "other"}, expected: "local/other:n\t7\n"},
		{args: []string{"rm", "app", "theme", "prefs"}},
		{args: []string{"get", "app", "theme"}, expectedErr: true},
		{args: []string{"get", "a:b", "theme"}, expectedErr: true},
		{args: []string{"--area", "cookie", "get", "app", "theme"}, expectedErr: true},
		{args: []string{"clear"}},
		{args: []string{"size"}, expected: "0\n"},
	}
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			out, err := run(dsn, c.args...)
			if c.expectedErr {
				require.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			require.Equal(t, c.expected, out)
		})
	}
}
