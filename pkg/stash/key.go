package stash

import (
	"fmt"

	"tespkg.in/stash/pkg/keys"
	"tespkg.in/stash/pkg/store"
	"tespkg.in/stash/pkg/value"
)

// AnyKey is implemented by Ref and every Key[T].
type AnyKey interface {
	Ref() Ref
}

// Ref is the untyped identity of a slot. Two refs are equal iff namespace,
// name and area are.
type Ref struct {
	Namespace string
	Name      string
	Area      store.AreaName
}

// NewRef validates and returns a ref, area defaults to store.Local.
func NewRef(namespace, name string, area ...store.AreaName) (Ref, error) {
	r := Ref{Namespace: namespace, Name: name, Area: store.Local}
	if len(area) > 0 && area[0] != "" {
		r.Area = area[0]
	}
	if err := r.validate(); err != nil {
		return Ref{}, err
	}
	return r, nil
}

func (r Ref) Ref() Ref { return r }

// WireKey is the key the slot is stored under.
func (r Ref) WireKey() string {
	return keys.Derive(r.Namespace, r.Name)
}

func (r Ref) String() string {
	return string(r.Area) + "/" + r.Namespace + keys.Delimiter + r.Name
}

func (r Ref) validate() error {
	if err := keys.Validate(r.Namespace, r.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if r.Area != store.Local && r.Area != store.Session {
		return fmt.Errorf("%w: unknown area %q", ErrInvalidKey, r.Area)
	}
	return nil
}

// Key is a slot holding values of type T.
type Key[T value.Value] struct {
	ref Ref
}

// NewKey declares a slot, area defaults to store.Local.
func NewKey[T value.Value](namespace, name string, area ...store.AreaName) (Key[T], error) {
	r, err := NewRef(namespace, name, area...)
	if err != nil {
		return Key[T]{}, err
	}
	return Key[T]{ref: r}, nil
}

// MustNewKey is like NewKey but panics on an invalid key.
func MustNewKey[T value.Value](namespace, name string, area ...store.AreaName) Key[T] {
	k, err := NewKey[T](namespace, name, area...)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key[T]) Ref() Ref             { return k.ref }
func (k Key[T]) Namespace() string    { return k.ref.Namespace }
func (k Key[T]) Name() string         { return k.ref.Name }
func (k Key[T]) Area() store.AreaName { return k.ref.Area }
func (k Key[T]) String() string       { return k.ref.String() }
