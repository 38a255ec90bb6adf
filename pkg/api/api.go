// Package api is a client of the stashd http APIs.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/server"
	"tespkg.in/stash/pkg/stash"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/value"
)

const (
	// HTTPAddrEnvName defines an environment variable name which sets
	// the HTTP address if there is no address specified.
	HTTPAddrEnvName = "STASH_HTTP_ADDR"
)

// Config is used to configure the creation of a client
type Config struct {
	// Address is the address of the stashd
	Address string

	// Scheme is the URI scheme for the stashd
	Scheme string

	// HttpClient is the client to use. Default will be
	// used if not provided.
	HttpClient *http.Client
}

func defaultConfig() *Config {
	config := &Config{
		Address: "127.0.0.1:9113",
		Scheme:  "http",
	}
	if addr := os.Getenv(HTTPAddrEnvName); addr != "" {
		config.Address = addr
	}
	return config
}

// StatusError carries the status and message of a failed call.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Client provides a client to the stashd APIs
type Client struct {
	config Config
}

// NewClient returns a new client
func NewClient(config *Config) (*Client, error) {
	defConfig := defaultConfig()
	c := *config
	if c.Address == "" {
		c.Address = defConfig.Address
	}
	if c.Scheme == "" {
		c.Scheme = defConfig.Scheme
	}
	if c.HttpClient == nil {
		c.HttpClient = http.DefaultClient
	}

	if scheme, addr, ok := strings.Cut(c.Address, "://"); ok {
		switch scheme {
		case "http", "https":
			c.Scheme = scheme
		default:
			return nil, fmt.Errorf("unknown protocol scheme: %s", scheme)
		}
		c.Address = addr
	}
	return &Client{config: c}, nil
}

// do sends the request and decodes a 200 answer into out when not nil.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body string, out interface{}) error {
	u := url.URL{
		Scheme:   c.config.Scheme,
		Host:     c.config.Address,
		Path:     path,
		RawQuery: params.Encode(),
	}
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return err
	}
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.config.HttpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		bs, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(bs, &errBody)
		return &StatusError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func keyPath(ref stash.Ref) string {
	return fmt.Sprintf("/key/%s/%s/%s",
		url.PathEscape(string(ref.Area)), url.PathEscape(ref.Namespace), url.PathEscape(ref.Name))
}

// nsParams keeps the nil and empty filter apart on the wire.
func nsParams(namespaces []string) url.Values {
	params := url.Values{}
	if namespaces == nil {
		return params
	}
	if len(namespaces) == 0 {
		params.Set("ns", "")
		return params
	}
	params["ns"] = namespaces
	return params
}

func (c *Client) Get(ctx context.Context, key stash.AnyKey) (value.Value, error) {
	kval := server.KeyVal{}
	if err := c.do(ctx, http.MethodGet, keyPath(key.Ref()), nil, "", &kval); err != nil {
		return nil, err
	}
	return codec.Decode(kval.Value)
}

func (c *Client) Put(ctx context.Context, key stash.AnyKey, val value.Value) error {
	wire, err := codec.Encode(val)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, keyPath(key.Ref()), nil, wire, nil)
}

func (c *Client) Merge(ctx context.Context, key stash.AnyKey, partial value.Object) error {
	wire, err := codec.Encode(partial)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, keyPath(key.Ref()), nil, wire, nil)
}

func (c *Client) Delete(ctx context.Context, key stash.AnyKey) error {
	return c.do(ctx, http.MethodDelete, keyPath(key.Ref()), nil, "", nil)
}

// Entries lists the slots of namespaces, every namespace when nil.
func (c *Client) Entries(ctx context.Context, namespaces []string) ([]stash.Entry, error) {
	var kvals []server.KeyVal
	if err := c.do(ctx, http.MethodGet, "/entries", nsParams(namespaces), "", &kvals); err != nil {
		return nil, err
	}
	entries := make([]stash.Entry, 0, len(kvals))
	for _, kval := range kvals {
		v, err := codec.Decode(kval.Value)
		if err != nil {
			return nil, fmt.Errorf("decode %s:%s: %w", kval.Namespace, kval.Name, err)
		}
		ref := stash.Ref{Namespace: kval.Namespace, Name: kval.Name, Area: store.AreaName(kval.Area)}
		entries = append(entries, stash.Entry{Key: ref, Value: v, Area: ref.Area})
	}
	return entries, nil
}

func (c *Client) Size(ctx context.Context, namespaces []string) (int, error) {
	size := server.Size{}
	if err := c.do(ctx, http.MethodGet, "/size", nsParams(namespaces), "", &size); err != nil {
		return 0, err
	}
	return size.Size, nil
}

func (c *Client) Clear(ctx context.Context, namespaces []string) error {
	return c.do(ctx, http.MethodDelete, "/entries", nsParams(namespaces), "", nil)
}
