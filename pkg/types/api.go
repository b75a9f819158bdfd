package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindNotFound         ErrKind = iota // no key at the requested name/index
	ErrKindWrongMode                       // value write through a provider-owned key
	ErrKindPriorityRejected                // lower-priority provider lost arbitration
	ErrKindAlreadyTaken                    // slot already occupied
	ErrKindOutOfRange                      // slot index outside [0,15]
	ErrKindExhausted                       // all slots occupied
	ErrKindCreationFailed                  // malformed add request (name/size/value)
	ErrKindReserved                        // write to a synthetic counter key
	ErrKindIO                              // persistence or source decoding failure
)

// String returns a short, stable name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not-found"
	case ErrKindWrongMode:
		return "wrong-mode"
	case ErrKindPriorityRejected:
		return "priority-rejected"
	case ErrKindAlreadyTaken:
		return "already-taken"
	case ErrKindOutOfRange:
		return "out-of-range"
	case ErrKindExhausted:
		return "exhausted"
	case ErrKindCreationFailed:
		return "creation-failed"
	case ErrKindReserved:
		return "reserved"
	case ErrKindIO:
		return "io"
	default:
		return fmt.Sprintf("kind-%d", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrNotFound) holds for every not-found error regardless
// of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds a typed error of the given kind with a formatted message.
func Errorf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a typed error of the given kind around cause.
func Wrap(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}

// Sentinels commonly returned by implementations.
var (
	// ErrNotFound indicates no key matched the requested name or index.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "key not found"}
	// ErrWrongMode indicates a value write to a key owned by a provider.
	ErrWrongMode = &Error{Kind: ErrKindWrongMode, Msg: "key value is provider-owned"}
	// ErrPriorityRejected indicates a provider lost priority arbitration.
	ErrPriorityRejected = &Error{Kind: ErrKindPriorityRejected, Msg: "key already handled by a prioritized provider"}
	// ErrAlreadyTaken indicates a slot index is occupied.
	ErrAlreadyTaken = &Error{Kind: ErrKindAlreadyTaken, Msg: "slot already taken"}
	// ErrOutOfRange indicates a slot index outside the allocator capacity.
	ErrOutOfRange = &Error{Kind: ErrKindOutOfRange, Msg: "slot index out of range"}
	// ErrExhausted indicates every slot is occupied.
	ErrExhausted = &Error{Kind: ErrKindExhausted, Msg: "no vacant slot"}
	// ErrCreationFailed indicates a malformed add request.
	ErrCreationFailed = &Error{Kind: ErrKindCreationFailed, Msg: "failed to create key"}
	// ErrReserved indicates a write to a reserved (synthetic) key.
	ErrReserved = &Error{Kind: ErrKindReserved, Msg: "key is reserved"}
	// ErrIO indicates a persistence or decoding failure.
	ErrIO = &Error{Kind: ErrKindIO, Msg: "i/o failure"}
)

// -----------------------------------------------------------------------------
// Key Identifiers & Metadata
// -----------------------------------------------------------------------------

const (
	// NameLen is the fixed width of key names and type tags.
	NameLen = 4

	// MaxValueSize is the largest declared value size a key may carry.
	MaxValueSize = 255

	// KeyCounter is the synthetic key holding the number of keys (ui32, big-endian).
	KeyCounter = "#KEY"

	// KeyFanNumber is the synthetic key holding 1 + highest occupied fan slot (ui8).
	KeyFanNumber = "FNum"

	// KeyPropertyPrefix prefixes persisted key property names:
	// "fakesmc-key-<name>-<type>".
	KeyPropertyPrefix = "fakesmc-key"
)

// KeyInfo is a value copy of a key's metadata and, when materialized, its
// current bytes. It is what crosses package boundaries (command surface,
// persistence, CLI output); it never aliases registry state.
type KeyInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Value    []byte `json:"value,omitempty"`
	Provider string `json:"provider,omitempty"` // provider name when provider-backed
	Priority int    `json:"priority,omitempty"`
	Derived  bool   `json:"derived,omitempty"` // synthetic counter key
}

// IsProvided reports whether the key's value is produced by a provider.
func (k KeyInfo) IsProvided() bool { return k.Provider != "" }
