package blueprint

import "errors"

var (
	ErrNotFound     = errors.New("blueprint: not found")
	ErrInvalidInput = errors.New("blueprint: invalid input")
	ErrNoResult     = errors.New("blueprint: no analysis result")
)
