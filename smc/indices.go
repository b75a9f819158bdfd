package smc

import "github.com/joshuapare/smckit/smc/slots"

// TakeVacantFanIndex reserves the lowest free fan slot and refreshes FNum.
// Returns slots.None and ErrExhausted when all 16 are taken.
func (s *Store) TakeVacantFanIndex() (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.fans.TakeVacant()
	if err != nil {
		return slots.None, err
	}
	s.updateFanCounterLocked()
	return i, nil
}

// TakeFanIndex reserves a specific fan slot and refreshes FNum.
func (s *Store) TakeFanIndex(index uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fans.Take(index); err != nil {
		return err
	}
	s.updateFanCounterLocked()
	return nil
}

// ReleaseFanIndex frees a fan slot and refreshes FNum. Free or out-of-range
// indices are ignored.
func (s *Store) ReleaseFanIndex(index uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fans.Release(index)
	s.updateFanCounterLocked()
}

// FanSlots returns the fan occupancy mask.
func (s *Store) FanSlots() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fans.Mask()
}

// TakeVacantGPUIndex reserves the lowest free GPU slot.
// Returns slots.None and ErrExhausted when all 16 are taken.
func (s *Store) TakeVacantGPUIndex() (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gpus.TakeVacant()
}

// TakeGPUIndex reserves a specific GPU slot.
func (s *Store) TakeGPUIndex(index uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gpus.Take(index)
}

// ReleaseGPUIndex frees a GPU slot. Free or out-of-range indices are ignored.
func (s *Store) ReleaseGPUIndex(index uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpus.Release(index)
}

// GPUSlots returns the GPU occupancy mask.
func (s *Store) GPUSlots() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gpus.Mask()
}
