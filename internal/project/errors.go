package project

import "errors"

var (
	ErrNotFound     = errors.New("project: not found")
	ErrInvalidInput = errors.New("project: invalid input")
)
