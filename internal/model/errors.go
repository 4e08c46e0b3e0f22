package model

import "errors"

var (
	// ErrNotFound is returned by stores for unknown keys.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by stores on duplicate creation.
	ErrAlreadyExists = errors.New("already exists")
)
