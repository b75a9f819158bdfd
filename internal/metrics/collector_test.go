package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	smctest "github.com/joshuapare/smckit/internal/testutil"
)

func TestCollector(t *testing.T) {
	s := smctest.NewStore(t)

	_, err := s.AddKeyWithProvider("TC0P", "sp78", 2, smctest.StaticProvider("acpi"), 0)
	require.NoError(t, err)
	_, err = s.AddKeyWithValue("NATJ", "ui8 ", 1, []byte{0})
	require.NoError(t, err)
	require.NoError(t, s.TakeFanIndex(2))
	require.NoError(t, s.TakeFanIndex(5))
	s.ReleaseFanIndex(5)
	_, err = s.TakeVacantGPUIndex()
	require.NoError(t, err)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(s)))

	expected := `
# HELP smckit_registry_keys Number of registered keys, counters included.
# TYPE smckit_registry_keys gauge
smckit_registry_keys 4
# HELP smckit_registry_provided_keys Number of keys backed by a provider, by provider.
# TYPE smckit_registry_provided_keys gauge
smckit_registry_provided_keys{provider="acpi"} 1
# HELP smckit_slots_fan_number Value published in FNum: highest occupied fan slot plus one.
# TYPE smckit_slots_fan_number gauge
smckit_slots_fan_number 3
# HELP smckit_slots_occupied Occupied slots by allocator.
# TYPE smckit_slots_occupied gauge
smckit_slots_occupied{allocator="fan"} 1
smckit_slots_occupied{allocator="gpu"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}
