package domain

import "errors"

// Error kinds. Only ErrSourceOpen, ErrDescriptorLoad, ErrOutputWrite and
// ErrInvalidConfig end a run; decode errors are absorbed by the raw fallback.
var (
	ErrSourceOpen     = errors.New("source open failed")
	ErrDescriptorLoad = errors.New("descriptor load failed")
	ErrDecode         = errors.New("decode failed")
	ErrUnknownType    = errors.New("unknown message type")
	ErrOutputWrite    = errors.New("output write failed")
	ErrInvalidConfig  = errors.New("invalid configuration")
)
