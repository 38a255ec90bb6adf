package openapi

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type meta struct {
	Owner string `json:"owner"`
}

type Stamp struct {
	At int64 `json:"at,omitempty"`
}

type slot struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Hidden    string `json:"-"`
	Kind      string
	Tags      []string `json:"tags,omitempty"`
	Nested    meta     `json:"nested"`
	secret    string
	meta
	*Stamp
}

func TestTypeFields(t *testing.T) {
	expected := Fields{
		{Name: "namespace", Required: true},
		{Name: "name", Required: true},
		{Name: "Kind", Required: true},
		{Name: "tags", Required: false},
		{Name: "owner", Required: true},
		{Name: "at", Required: false},
	}
	cases := []interface{}{
		slot{},
		&slot{},
		[]slot{},
		[]*slot{},
	}
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			fields := typeFields(reflect.ValueOf(c))
			require.Equal(t, len(expected), len(fields))
			for j := range expected {
				require.Equal(t, expected[j].Name, fields[j].Name)
				require.Equal(t, expected[j].Required, fields[j].Required)
			}
		})
	}
}

func TestTypeFieldsNonStruct(t *testing.T) {
	require.Empty(t, typeFields(reflect.ValueOf("text")))
}

func TestGenerateModel(t *testing.T) {
	model := GenerateModel(reflect.ValueOf(slot{}))
	require.Equal(t, []string{"namespace", "name", "Kind", "owner"}, model.Required)
	require.Equal(t, "array", model.Properties["tags"].Type[0])
	require.Equal(t, "string", model.Properties["tags"].Items.Schema.Type[0])
	require.Equal(t, "integer", model.Properties["at"].Type[0])
}
