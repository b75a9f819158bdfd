package sensors

import (
	"fmt"

	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/codec"
)

// Fan describes a fan sensor source.
type Fan struct {
	Source   string // provider name
	Min, Max float64
	RPM      func() float64
	Priority int
}

// GPU describes a GPU temperature source.
type GPU struct {
	Source      string
	Temperature func() float64
	Priority    int
}

// FanKey returns the name of fan key kind ("Ac", "Mn", "Mx") for slot index.
func FanKey(index uint8, kind string) string {
	return fmt.Sprintf("F%X%s", index, kind)
}

// GPUKey returns the proximity temperature key name for slot index.
func GPUKey(index uint8) string {
	return fmt.Sprintf("TG%XP", index)
}

// RegisterFan reserves the next fan slot and publishes the fan's keys.
// The slot is released again if the keys cannot be published.
func RegisterFan(s *smc.Store, f Fan) (uint8, error) {
	index, err := s.TakeVacantFanIndex()
	if err != nil {
		return index, fmt.Errorf("fan %s: %w", f.Source, err)
	}
	if err := publishFan(s, index, f); err != nil {
		s.ReleaseFanIndex(index)
		return index, fmt.Errorf("fan %s: %w", f.Source, err)
	}
	return index, nil
}

// publishFan checks every name and payload before creating any key, so a
// rejected fan leaves no keys behind. Keys are never deleted: a failure
// after the provider key exists only detaches the provider.
func publishFan(s *smc.Store, index uint8, f Fan) error {
	limits := []struct {
		name  string
		value float64
	}{
		{FanKey(index, "Mn"), f.Min},
		{FanKey(index, "Mx"), f.Max},
	}
	payloads := make([][]byte, len(limits))
	for i, l := range limits {
		if s.IsReserved(l.name) {
			return types.Errorf(types.ErrKindReserved, "key %s is reserved", l.name)
		}
		data, err := codec.Encode(types.TypeFPE2, l.value)
		if err != nil {
			return err
		}
		payloads[i] = data
	}

	if _, err := s.AddKeyWithProvider(FanKey(index, "Ac"), types.TypeFPE2, 2,
		Numeric(f.Source, types.TypeFPE2, f.RPM), f.Priority); err != nil {
		return err
	}
	for i, l := range limits {
		if _, err := s.AddKeyWithValue(l.name, types.TypeFPE2, len(payloads[i]), payloads[i]); err != nil {
			s.DetachProvider(f.Source)
			return err
		}
	}
	return nil
}

// UnregisterFan detaches the fan's provider and frees its slot.
func UnregisterFan(s *smc.Store, index uint8, source string) {
	s.DetachProvider(source)
	s.ReleaseFanIndex(index)
}

// RegisterGPU reserves the next GPU slot and publishes its temperature key.
func RegisterGPU(s *smc.Store, g GPU) (uint8, error) {
	index, err := s.TakeVacantGPUIndex()
	if err != nil {
		return index, fmt.Errorf("gpu %s: %w", g.Source, err)
	}
	_, err = s.AddKeyWithProvider(GPUKey(index), types.TypeSP78, 2,
		Numeric(g.Source, types.TypeSP78, g.Temperature), g.Priority)
	if err != nil {
		s.ReleaseGPUIndex(index)
		return index, fmt.Errorf("gpu %s: %w", g.Source, err)
	}
	return index, nil
}

// UnregisterGPU detaches the GPU's provider and frees its slot.
func UnregisterGPU(s *smc.Store, index uint8, source string) {
	s.DetachProvider(source)
	s.ReleaseGPUIndex(index)
}
