package store

import "errors"

var (
	ErrNotFound  = errors.New("store: job not found")
	ErrDuplicate = errors.New("store: duplicate job id")
	ErrConflict  = errors.New("store: conflicting job state")
	ErrTerminal  = errors.New("store: job is in a terminal state")
)
