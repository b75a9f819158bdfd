package slots

import (
	"math/bits"

	"github.com/joshuapare/smckit/pkg/types"
)

const (
	// Capacity is the number of slots an Allocator manages.
	Capacity = 16

	// None is returned in place of an index when no slot is available.
	// It is never a valid allocated index.
	None = 0xFF
)

// Allocator is a 16-slot occupancy bitmask. The zero value is an empty
// allocator ready for use.
//
// NOT thread-safe.
type Allocator struct {
	mask uint16
}

// TakeVacant claims the lowest free slot and returns its index.
// Returns None and ErrExhausted when every slot is occupied.
func (a *Allocator) TakeVacant() (uint8, error) {
	for i := uint8(0); i < Capacity; i++ {
		if a.mask&(1<<i) == 0 {
			a.mask |= 1 << i
			return i, nil
		}
	}
	return None, ErrExhausted
}

// Take claims slot index if it is in range and free.
func (a *Allocator) Take(index uint8) error {
	if index >= Capacity {
		return types.Errorf(types.ErrKindOutOfRange, "slot %d out of range [0,%d)", index, Capacity)
	}
	if a.mask&(1<<index) != 0 {
		return types.Errorf(types.ErrKindAlreadyTaken, "slot %d already taken", index)
	}
	a.mask |= 1 << index
	return nil
}

// Release frees slot index. Releasing a free or out-of-range slot is a no-op.
// Reports whether the occupancy changed.
func (a *Allocator) Release(index uint8) bool {
	if index >= Capacity || a.mask&(1<<index) == 0 {
		return false
	}
	a.mask &^= 1 << index
	return true
}

// Occupied reports whether slot index is in use.
func (a *Allocator) Occupied(index uint8) bool {
	return index < Capacity && a.mask&(1<<index) != 0
}

// Count returns the number of occupied slots.
func (a *Allocator) Count() int {
	return bits.OnesCount16(a.mask)
}

// Highest returns 1 + the index of the highest occupied slot, or 0 when the
// allocator is empty. This is the value the fan counter key reports.
func (a *Allocator) Highest() uint8 {
	return uint8(bits.Len16(a.mask))
}

// Mask returns the raw occupancy mask.
func (a *Allocator) Mask() uint16 {
	return a.mask
}
