// Package slots provides the fixed-capacity index allocator used to hand out
// stable small integers to fan and GPU sensor sources.
//
// # Overview
//
// An Allocator is a 16-bit occupancy mask. Bit i set means slot i is in use.
// The allocator supports:
//
//   - TakeVacant(): claim the lowest free slot
//   - Take(i): claim a specific slot
//   - Release(i): free a slot (silent no-op when already free or out of range)
//   - Occupied(i), Count(), Highest(), Mask(): queries
//
// # Determinism
//
// TakeVacant always scans 0→15 and returns the first unset bit. Given the
// same registration order, sensors receive the same indices across restarts.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. The smc.Store owns two allocators
// and guards them with its access lock.
package slots
