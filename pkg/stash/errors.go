package stash

import "errors"

var (
	ErrInvalidKey     = errors.New("invalid key")
	ErrNotFound       = errors.New("not found")
	ErrTypeMismatch   = errors.New("stored value has another type")
	ErrMergeNotFound  = errors.New("cannot initialize via merge")
	ErrMergeNotObject = errors.New("cannot merge into non-object")
)
