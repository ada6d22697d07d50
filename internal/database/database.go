package database

import (
	"errors"
)

// ErrNotFound is returned when the record addressed by a key does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when inserting a record whose key is already taken.
var ErrAlreadyExists = errors.New("record already exists")
