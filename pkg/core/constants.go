package core

import "errors"

// DefaultTopN is the number of symbols reported when no limit is given
const DefaultTopN = 10

// Errors
var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrNilEvent     = errors.New("nil event")
	ErrNilOrder     = errors.New("nil order")
)
