package command

import "github.com/joshuapare/smckit/pkg/types"

// Status is the outcome class reported to command callers.
type Status int

const (
	Success     Status = iota
	NotFound           // no key or slot matched
	Rejected           // request well-formed but refused by registry rules
	BadArgument        // request malformed
	Failure            // internal or provider failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case Rejected:
		return "rejected"
	case BadArgument:
		return "bad_argument"
	default:
		return "error"
	}
}

// StatusOf classifies err.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	kind, ok := types.KindOf(err)
	if !ok {
		return Failure
	}
	switch kind {
	case types.ErrKindNotFound:
		return NotFound
	case types.ErrKindPriorityRejected, types.ErrKindWrongMode, types.ErrKindReserved,
		types.ErrKindAlreadyTaken, types.ErrKindExhausted:
		return Rejected
	case types.ErrKindCreationFailed, types.ErrKindOutOfRange:
		return BadArgument
	default:
		return Failure
	}
}
