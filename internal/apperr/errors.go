package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrStaleIndex      = errors.New("stale index")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrLoad            = errors.New("load failed")
	ErrNotLoaded       = errors.New("extensions not loaded")
)
