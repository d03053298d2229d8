package repository

import "errors"

var (
	ErrNotFound  = errors.New("task not found")
	ErrInvalidID = errors.New("malformed task id")
)
