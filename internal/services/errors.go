package services

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidID        = errors.New("invalid id")
	ErrCycle            = errors.New("dependency would create a cycle")
	ErrDependencyExists = errors.New("dependency already exists")
)
