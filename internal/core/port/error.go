package port

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrCanceled     = errors.New("canceled")
	ErrRejected     = errors.New("rejected")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
	ErrNotSupported = errors.New("not supported")
)
