package smc

import (
	"iter"

	"github.com/joshuapare/smckit/pkg/types"
)

// Snapshot is an immutable, point-in-time view of a Store's key table.
// Keys added after the snapshot was taken are not visible through it.
type Snapshot struct {
	keys []*Key
}

// Len returns the number of keys in the snapshot.
func (s Snapshot) Len() int { return len(s.keys) }

// At returns the key at index.
func (s Snapshot) At(index int) (*Key, bool) {
	if index < 0 || index >= len(s.keys) {
		return nil, false
	}
	return s.keys[index], true
}

// All iterates keys in insertion order.
func (s Snapshot) All() iter.Seq2[int, *Key] {
	return func(yield func(int, *Key) bool) {
		for i, k := range s.keys {
			if !yield(i, k) {
				return
			}
		}
	}
}

// Infos returns the metadata of every key, without values.
func (s Snapshot) Infos() []types.KeyInfo {
	out := make([]types.KeyInfo, len(s.keys))
	for i, k := range s.keys {
		out[i] = k.Meta()
	}
	return out
}
