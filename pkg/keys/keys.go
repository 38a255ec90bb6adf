// Package keys derives the wire-level storage keys owned by stash.
//
// A slot (namespace, name) is stored under "stash/<namespace>:<name>". The
// storage areas are shared with arbitrary foreign data, so every parse of a
// raw key must tolerate strings that do not carry the prefix.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Prefix marks a key as owned by stash.
	Prefix = "stash"
	// Delimiter separates namespace from name. It may not appear in either.
	Delimiter = ":"

	ownerPrefix = Prefix + "/"
)

var (
	ErrEmptyNamespace = errors.New("empty namespace not allowed")
	ErrEmptyName      = errors.New("empty name not allowed")
	ErrDelimiter      = fmt.Errorf("%q not allowed in namespace or name", Delimiter)
)

// Validate checks namespace and name before they are used to build a key.
func Validate(namespace, name string) error {
	if namespace == "" {
		return ErrEmptyNamespace
	}
	if name == "" {
		return ErrEmptyName
	}
	if strings.Contains(namespace, Delimiter) {
		return fmt.Errorf("namespace %q: %w", namespace, ErrDelimiter)
	}
	if strings.Contains(name, Delimiter) {
		return fmt.Errorf("name %q: %w", name, ErrDelimiter)
	}
	return nil
}

// Derive returns the wire key of a validated (namespace, name) pair.
func Derive(namespace, name string) string {
	return ownerPrefix + namespace + Delimiter + name
}

// Parse is the inverse of Derive. It reports false for any key not owned by
// stash, which is expected for foreign data in a shared area.
func Parse(wire string) (namespace, name string, ok bool) {
	rest := strings.TrimPrefix(wire, ownerPrefix)
	if len(rest) == len(wire) {
		return "", "", false
	}
	i := strings.Index(rest, Delimiter)
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// Owned reports whether a raw key carries the stash prefix.
func Owned(wire string) bool {
	return strings.HasPrefix(wire, ownerPrefix)
}

// OwnerPrefix is the prefix shared by every key stash writes.
func OwnerPrefix() string {
	return ownerPrefix
}

// NamespacePrefix is the prefix shared by every key of one namespace.
func NamespacePrefix(namespace string) string {
	return ownerPrefix + namespace + Delimiter
}
