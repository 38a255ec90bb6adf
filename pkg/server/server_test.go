package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"tespkg.in/stash/pkg/backend"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/logging"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/store/memory"
	"tespkg.in/stash/pkg/value"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T) *Server {
	p := &patchTable{
		buildLogger: func(*logging.Options) (*zap.Logger, error) {
			return zap.NewNop(), nil
		},
		openHost: func(dsn, sessionID string, opts ...backend.Option) (store.Host, error) {
			return memory.NewOrigin().NewContext(sessionID), nil
		},
	}
	s, err := newServer(DefaultArgs(), p)
	require.Nil(t, err)
	t.Cleanup(s.Close)
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(method, target, r))
	return w
}

func decodeKeyVal(t *testing.T, w *httptest.ResponseRecorder) KeyVal {
	var kv KeyVal
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &kv))
	return kv
}

func TestNewServerValidate(t *testing.T) {
	a := DefaultArgs()
	a.Schema = "ftp"
	_, err := newServer(a, newPatchTable())
	require.NotNil(t, err)

	a = DefaultArgs()
	a.ListenAddr = ""
	_, err = newServer(a, newPatchTable())
	require.NotNil(t, err)
}

func TestNewServerOpenFailure(t *testing.T) {
	p := newPatchTable()
	p.buildLogger = func(*logging.Options) (*zap.Logger, error) { return zap.NewNop(), nil }
	a := DefaultArgs()
	a.Dsn = "redis://localhost:6379"
	_, err := newServer(a, p)
	require.NotNil(t, err)
}

func TestKeyRoundTrip(t *testing.T) {
	s := testServer(t)

	w := do(s, http.MethodPut, "/key/local/app/theme", `"dark"`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, http.MethodGet, "/key/local/app/theme", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, KeyVal{
		Namespace: "app",
		Name:      "theme",
		Area:      "local",
		Kind:      "string",
		Value:     `"dark"`,
	}, decodeKeyVal(t, w))

	// areas are isolated
	w = do(s, http.MethodGet, "/key/session/app/theme", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, http.MethodDelete, "/key/local/app/theme", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(s, http.MethodGet, "/key/local/app/theme", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// removing an absent slot is fine
	w = do(s, http.MethodDelete, "/key/local/app/theme", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestKeyExtendedValue(t *testing.T) {
	s := testServer(t)
	wire, err := codec.Encode(value.BigIntFromInt64(42))
	require.Nil(t, err)

	require.Equal(t, http.StatusOK, do(s, http.MethodPut, "/key/session/calc/total", wire).Code)
	w := do(s, http.MethodGet, "/key/session/calc/total", "")
	require.Equal(t, http.StatusOK, w.Code)
	kv := decodeKeyVal(t, w)
	require.Equal(t, "bigint", kv.Kind)
	require.Equal(t, wire, kv.Value)
}

func TestKeyBadRequests(t *testing.T) {
	s := testServer(t)
	cases := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/key/cookie/app/theme", ""},
		{http.MethodPut, "/key/local/a:b/theme", `1`},
		{http.MethodPut, "/key/local/app/the:me", `1`},
		{http.MethodPut, "/key/local/app/theme", `{"tag":"date","payload":1}`},
		{http.MethodPatch, "/key/local/app/theme", `[1,2]`},
	}
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			w := do(s, c.method, c.target, c.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestPatchKey(t *testing.T) {
	s := testServer(t)

	w := do(s, http.MethodPatch, "/key/local/app/prefs", `{"a":1}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusOK, do(s, http.MethodPut, "/key/local/app/prefs", `{"a":1,"b":{"c":2}}`).Code)
	require.Equal(t, http.StatusOK, do(s, http.MethodPatch, "/key/local/app/prefs", `{"b":{"d":3}}`).Code)

	w = do(s, http.MethodGet, "/key/local/app/prefs", "")
	require.Equal(t, http.StatusOK, w.Code)
	got, err := codec.Decode(decodeKeyVal(t, w).Value)
	require.Nil(t, err)
	expected := value.Object{
		"a": value.Number(1),
		"b": value.Object{"c": value.Number(2), "d": value.Number(3)},
	}
	require.True(t, value.Equal(expected, got), "got %v", got)

	require.Equal(t, http.StatusOK, do(s, http.MethodPut, "/key/local/app/theme", `"dark"`).Code)
	w = do(s, http.MethodPatch, "/key/local/app/theme", `{"a":1}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func seed(t *testing.T, s *Server) {
	for _, target := range []string{
		"/key/local/ns1/a",
		"/key/local/ns1/b",
		"/key/local/ns2/c",
		"/key/session/ns1/d",
	} {
		require.Equal(t, http.StatusOK, do(s, http.MethodPut, target, `true`).Code)
	}
}

func TestEntries(t *testing.T) {
	s := testServer(t)
	seed(t, s)

	cases := []struct {
		query    string
		expected []string
	}{
		{"", []string{"local/ns1:a", "local/ns1:b", "local/ns2:c", "session/ns1:d"}},
		{"?ns=ns1", []string{"local/ns1:a", "local/ns1:b", "session/ns1:d"}},
		{"?ns=ns2&ns=ns1", []string{"local/ns1:a", "local/ns1:b", "local/ns2:c", "session/ns1:d"}},
		{"?ns=", []string{}},
		{"?ns=nope", []string{}},
	}
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			w := do(s, http.MethodGet, "/entries"+c.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			var kvals []KeyVal
			require.Nil(t, json.Unmarshal(w.Body.Bytes(), &kvals))
			got := []string{}
			for _, kv := range kvals {
				require.Equal(t, "bool", kv.Kind)
				got = append(got, fmt.Sprintf("%s/%s:%s", kv.Area, kv.Namespace, kv.Name))
			}
			require.Equal(t, c.expected, got)

			w = do(s, http.MethodGet, "/size"+c.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			var size Size
			require.Nil(t, json.Unmarshal(w.Body.Bytes(), &size))
			require.Equal(t, len(c.expected), size.Size)
		})
	}
}

func TestDeleteEntries(t *testing.T) {
	s := testServer(t)
	seed(t, s)

	require.Equal(t, http.StatusOK, do(s, http.MethodDelete, "/entries?ns=ns1", "").Code)
	w := do(s, http.MethodGet, "/size", "")
	require.JSONEq(t, `{"size":1}`, w.Body.String())

	require.Equal(t, http.StatusOK, do(s, http.MethodDelete, "/entries", "").Code)
	w = do(s, http.MethodGet, "/size", "")
	require.JSONEq(t, `{"size":0}`, w.Body.String())
}

func TestServiceRoutes(t *testing.T) {
	s := testServer(t)
	require.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz", "").Code)

	w := do(s, http.MethodGet, s.args.SpecPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/key/{area}/{namespace}/{name}:")
	require.Contains(t, w.Body.String(), "operationId: PatchKey")

	do(s, http.MethodPut, "/key/local/app/theme", `"dark"`)
	do(s, http.MethodGet, "/key/local/app/theme", "")
	w = do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `stash_operations_total{op="get",result="ok"} 1`)
	require.Contains(t, body, `stashd_http_requests_total{method="PUT",path="/key/:area/:namespace/:name",status="200"} 1`)
	require.NotContains(t, body, `path="/metrics"`)
}

func TestGenerateSpec(t *testing.T) {
	var b strings.Builder
	require.Nil(t, GenerateSpec(&b, DefaultArgs().SpecArgs))
	for _, path := range []string{"/entries:", "/size:", "/key/{area}/{namespace}/{name}:"} {
		require.Contains(t, b.String(), path)
	}
}
