// Package smc implements the key registry of an emulated hardware management
// controller (SMC).
//
// # Overview
//
// A Store is an ordered table of Keys. Each Key has a 4-symbol name, a
// 4-symbol type tag, a declared size of 0-255 bytes and exactly one value
// source:
//
//   - inline: the key owns a byte buffer of exactly Size() bytes
//   - provider: the key delegates to a Provider that materializes the value
//     on demand
//
// Sensor drivers register keys with AddKeyWithValue or AddKeyWithProvider;
// hosts read them with Key, KeyAt and Keys.
//
// # Names
//
// Names shorter than four symbols are right padded with spaces ("FAN" →
// "FAN "). Identity is the padded name packed into a big-endian uint32 with
// ASCII letters folded to upper case, so "tc0p" and "TC0P" are the same key.
// A key keeps the spelling it was first registered with.
//
// # Synthetic Counters
//
// Two keys always exist and are derived from registry state:
//
//	#KEY  ui32  number of keys, big-endian
//	FNum  ui8   1 + highest occupied fan slot, or 0
//
// Both are recomputed under the access lock at every structural change and
// are never writable by callers.
//
// # Provider Arbitration
//
// A provider replaces an existing provider only if its priority is greater
// than or equal to the installed one. Equal priority lets the newcomer win.
//
// # Thread Safety
//
// A Store and all of its Keys share a single sync.Mutex. Every read and
// write of registry state runs under it. Providers are always invoked after
// the lock is released, so a provider may call back into the Store.
package smc
