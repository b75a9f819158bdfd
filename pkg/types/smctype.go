package types

// SMC wire-format type tags. Tags are exactly four symbols; shorter tags are
// space padded ("ui8 ").
const (
	TypeUI8  = "ui8 "
	TypeUI16 = "ui16"
	TypeUI32 = "ui32"
	TypeSI8  = "si8 "
	TypeSI16 = "si16"
	TypeFlag = "flag"
	TypeFPE2 = "fpe2" // unsigned fixed point, 14 integer bits, 2 fraction bits
	TypeFP88 = "fp88" // unsigned fixed point, 8.8
	TypeSP78 = "sp78" // signed fixed point, 7.8
	TypeCH8  = "ch8*" // character string, variable length
)

// TypeSize returns the natural value size for a fixed-width type tag.
// Variable-width tags (ch8*) and unknown tags report ok=false.
func TypeSize(typ string) (size int, ok bool) {
	switch typ {
	case TypeUI8, TypeSI8, TypeFlag:
		return 1, true
	case TypeUI16, TypeSI16, TypeFPE2, TypeFP88, TypeSP78:
		return 2, true
	case TypeUI32:
		return 4, true
	default:
		return 0, false
	}
}
