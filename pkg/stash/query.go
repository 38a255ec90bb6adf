package stash

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"tespkg.in/stash/pkg/codec"
	"tespkg.in/stash/pkg/keys"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/value"
)

// Entry is a stored slot found by a query.
type Entry struct {
	Key   Ref
	Value value.Value
	Area  store.AreaName
}

type rawEntry struct {
	ref Ref
	raw string
}

// prefixes resolves a namespace filter, nil means every namespace.
func prefixes(namespaces []string) []string {
	if namespaces == nil {
		return []string{keys.OwnerPrefix()}
	}
	out := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		out = append(out, keys.NamespacePrefix(ns))
	}
	return out
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// scan lists the owned entries of both areas, local first, each in the
// area's enumeration order.
func (c *Client) scan(namespaces []string) ([]rawEntry, error) {
	if namespaces != nil && len(namespaces) == 0 {
		return nil, nil
	}
	ps := prefixes(namespaces)

	var out []rawEntry
	for _, name := range store.AreaNames {
		a, err := c.host.Area(name)
		if err != nil {
			return nil, err
		}
		wires, err := a.Keys()
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", name, err)
		}
		for _, wire := range wires {
			if !hasAnyPrefix(wire, ps) {
				continue
			}
			ns, n, ok := keys.Parse(wire)
			if !ok {
				continue
			}
			raw, err := a.Get(wire)
			if errors.Is(err, store.ErrNotFound) {
				// removed since listed
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, rawEntry{ref: Ref{Namespace: ns, Name: n, Area: name}, raw: raw})
		}
	}
	return out, nil
}

// QueryEntries returns the entries of the given namespaces, of every
// namespace when nil, of none when empty. Local entries come before session
// entries.
func (c *Client) QueryEntries(namespaces []string) (out []Entry, err error) {
	defer func() { c.metrics.observe("query", err) }()

	raws, err := c.scan(namespaces)
	if err != nil {
		return nil, err
	}
	out = make([]Entry, 0, len(raws))
	for _, re := range raws {
		v, err := codec.Decode(re.raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", re.ref, err)
		}
		out = append(out, Entry{Key: re.ref, Value: v, Area: re.ref.Area})
	}
	return out, nil
}

// Size counts the entries QueryEntries would return.
func (c *Client) Size(namespaces []string) (int, error) {
	raws, err := c.scan(namespaces)
	if err != nil {
		return 0, err
	}
	return len(raws), nil
}

// Clear removes the entries of the given namespaces, of every namespace
// when nil. An empty non-nil slice clears nothing. Foreign keys are kept.
func (c *Client) Clear(namespaces []string) (err error) {
	defer func() { c.metrics.observe("clear", err) }()

	raws, err := c.scan(namespaces)
	if err != nil {
		return err
	}
	for _, re := range raws {
		err = multierr.Append(err, c.remove(re.ref))
	}
	return err
}

// ForEach calls fn for every entry of QueryEntries(namespaces), the first
// error returned by fn stops the iteration and is returned.
func (c *Client) ForEach(fn func(Entry) error, namespaces []string) error {
	entries, err := c.QueryEntries(namespaces)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}
