package models

import "errors"

var (
	// ErrNotFound is returned when a handle or layer name does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrWrongEntityKind is returned when an operation needs a different entity kind.
	ErrWrongEntityKind = errors.New("wrong entity kind")
	// ErrInvalidArgument is returned for out-of-range inputs such as a color outside 1..255.
	ErrInvalidArgument = errors.New("invalid argument")
)
