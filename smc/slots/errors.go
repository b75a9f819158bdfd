package slots

import "github.com/joshuapare/smckit/pkg/types"

var (
	// ErrExhausted indicates all Capacity slots are occupied.
	ErrExhausted = types.ErrExhausted

	// ErrAlreadyTaken indicates the requested slot is occupied.
	ErrAlreadyTaken = types.ErrAlreadyTaken

	// ErrOutOfRange indicates the requested slot is outside [0, Capacity).
	ErrOutOfRange = types.ErrOutOfRange
)
