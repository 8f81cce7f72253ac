// Package storage defines the errors shared by all storage implementations.
package storage

import "errors"

var (
	// ErrNotFound is returned when a retrieved key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrAlreadyExists is returned when an inserted key already exists.
	ErrAlreadyExists = errors.New("key already exists")
)
