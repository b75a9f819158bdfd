package smc

import "github.com/joshuapare/smckit/internal/buf"

// updateKeyCounterLocked recomputes #KEY. Callers hold s.mu.
func (s *Store) updateKeyCounterLocked() {
	s.keyCounter.storeDerivedLocked(buf.BE32(uint32(len(s.keys))))
}

// updateFanCounterLocked recomputes FNum. Callers hold s.mu.
func (s *Store) updateFanCounterLocked() {
	s.fanCounter.storeDerivedLocked([]byte{s.fans.Highest()})
}
