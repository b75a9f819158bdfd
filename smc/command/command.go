// Package command is the client-facing operation surface over a Store.
//
// Every operation returns a Status alongside its error so callers can tell
// a missing key from a refused request from an internal failure without
// inspecting error kinds. Successful value writes are persisted through the
// optional Persister.
package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshuapare/smckit/internal/logger"
	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/slots"
)

// Operation names, used as metric labels.
const (
	OpAddValue       = "add_value"
	OpAddProvider    = "add_provider"
	OpRemoveProvider = "remove_provider"
	OpGetByName      = "get_by_name"
	OpGetByIndex     = "get_by_index"
	OpGetAll         = "get_all"
	OpSetValue       = "set_value"
	OpTakeVacantFan  = "take_vacant_fan"
	OpReleaseFan     = "release_fan"
	OpTakeVacantGPU  = "take_vacant_gpu"
	OpTakeGPU        = "take_gpu"
	OpReleaseGPU     = "release_gpu"
)

// Persister stores caller-written keys. *nvram.Bank satisfies it.
type Persister interface {
	SaveKey(ctx context.Context, k *smc.Key) (bool, error)
}

// Options configures a Surface.
type Options struct {
	// Persister receives keys after successful value writes. Optional.
	Persister Persister

	// Logger defaults to logger.L.
	Logger *slog.Logger
}

// Surface dispatches client commands to a Store.
type Surface struct {
	store   *smc.Store
	persist Persister
	log     *slog.Logger
}

// New returns a Surface over s.
func New(s *smc.Store, opts Options) *Surface {
	log := opts.Logger
	if log == nil {
		log = logger.L
	}
	return &Surface{store: s, persist: opts.Persister, log: log}
}

// Store returns the underlying registry.
func (c *Surface) Store() *smc.Store { return c.store }

// AddValue registers or updates an inline key. A zero size is a bad
// argument; value may be nil to create a zeroed key.
func (c *Surface) AddValue(ctx context.Context, name, typ string, size int, value []byte) (types.KeyInfo, Status, error) {
	start := time.Now()
	if size <= 0 {
		err := types.Errorf(types.ErrKindCreationFailed, "key %s: size must be positive", name)
		return types.KeyInfo{}, observe(OpAddValue, start, err), err
	}
	k, err := c.store.AddKeyWithValue(name, typ, size, value)
	if err == nil {
		c.save(ctx, k)
	}
	return c.result(OpAddValue, start, k, err)
}

// AddProvider registers a provider-backed key or arbitrates against the
// provider already installed. A rejected provider reports Rejected along
// with the key that kept its existing provider.
func (c *Surface) AddProvider(name, typ string, size int, p smc.Provider, priority int) (types.KeyInfo, Status, error) {
	start := time.Now()
	if size <= 0 || p == nil {
		err := types.Errorf(types.ErrKindCreationFailed, "key %s: provider and positive size required", name)
		return types.KeyInfo{}, observe(OpAddProvider, start, err), err
	}
	k, err := c.store.AddKeyWithProvider(name, typ, size, p, priority)
	return c.result(OpAddProvider, start, k, err)
}

// RemoveProvider detaches the named provider from every key it owns.
// Returns the number of keys detached.
func (c *Surface) RemoveProvider(provider string) (int, Status, error) {
	start := time.Now()
	if provider == "" {
		err := types.Errorf(types.ErrKindCreationFailed, "provider name required")
		return 0, observe(OpRemoveProvider, start, err), err
	}
	n := c.store.DetachProvider(provider)
	return n, observe(OpRemoveProvider, start, nil), nil
}

// GetByName returns the key's metadata and current value.
func (c *Surface) GetByName(ctx context.Context, name string) (types.KeyInfo, Status, error) {
	start := time.Now()
	k, ok := c.store.Key(name)
	if !ok {
		err := types.Errorf(types.ErrKindNotFound, "key %q not found", name)
		return types.KeyInfo{}, observe(OpGetByName, start, err), err
	}
	info, err := k.Info(ctx)
	return info, observe(OpGetByName, start, err), err
}

// GetByIndex returns the key at index in registration order.
func (c *Surface) GetByIndex(ctx context.Context, index int) (types.KeyInfo, Status, error) {
	start := time.Now()
	k, ok := c.store.KeyAt(index)
	if !ok {
		err := types.Errorf(types.ErrKindNotFound, "no key at index %d", index)
		return types.KeyInfo{}, observe(OpGetByIndex, start, err), err
	}
	info, err := k.Info(ctx)
	return info, observe(OpGetByIndex, start, err), err
}

// GetAll returns every key of a point-in-time snapshot with its current
// value. Keys whose provider fails are reported with metadata only; the
// failures are returned as one error and the status is Failure.
func (c *Surface) GetAll(ctx context.Context) ([]types.KeyInfo, Status, error) {
	start := time.Now()
	snap := c.store.Keys()
	out := make([]types.KeyInfo, 0, snap.Len())
	var firstErr error
	for _, k := range snap.All() {
		info, err := k.Info(ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out = append(out, info)
	}
	return out, observe(OpGetAll, start, firstErr), firstErr
}

// SetValue overwrites an existing key's inline value.
func (c *Surface) SetValue(ctx context.Context, name string, value []byte) (Status, error) {
	start := time.Now()
	if len(value) == 0 {
		err := types.Errorf(types.ErrKindCreationFailed, "key %s: empty value", name)
		return observe(OpSetValue, start, err), err
	}
	k, ok := c.store.Key(name)
	if !ok {
		err := types.Errorf(types.ErrKindNotFound, "key %q not found", name)
		return observe(OpSetValue, start, err), err
	}
	if err := k.SetValue(value); err != nil {
		c.log.Warn("value write rejected", "key", k.Name(), "err", err)
		return observe(OpSetValue, start, err), err
	}
	c.save(ctx, k)
	return observe(OpSetValue, start, nil), nil
}

// TakeVacantFan claims the lowest free fan slot.
func (c *Surface) TakeVacantFan() (uint8, Status, error) {
	start := time.Now()
	i, err := c.store.TakeVacantFanIndex()
	return i, observe(OpTakeVacantFan, start, err), err
}

// ReleaseFan frees a fan slot. Releasing a free slot succeeds.
func (c *Surface) ReleaseFan(index uint8) (Status, error) {
	start := time.Now()
	if err := checkIndex(index); err != nil {
		return observe(OpReleaseFan, start, err), err
	}
	c.store.ReleaseFanIndex(index)
	return observe(OpReleaseFan, start, nil), nil
}

// TakeVacantGPU claims the lowest free GPU slot.
func (c *Surface) TakeVacantGPU() (uint8, Status, error) {
	start := time.Now()
	i, err := c.store.TakeVacantGPUIndex()
	return i, observe(OpTakeVacantGPU, start, err), err
}

// TakeGPU claims a specific GPU slot.
func (c *Surface) TakeGPU(index uint8) (Status, error) {
	start := time.Now()
	err := c.store.TakeGPUIndex(index)
	return observe(OpTakeGPU, start, err), err
}

// ReleaseGPU frees a GPU slot. Releasing a free slot succeeds.
func (c *Surface) ReleaseGPU(index uint8) (Status, error) {
	start := time.Now()
	if err := checkIndex(index); err != nil {
		return observe(OpReleaseGPU, start, err), err
	}
	c.store.ReleaseGPUIndex(index)
	return observe(OpReleaseGPU, start, nil), nil
}

func (c *Surface) result(op string, start time.Time, k *smc.Key, err error) (types.KeyInfo, Status, error) {
	var info types.KeyInfo
	if k != nil {
		info = k.Meta()
	}
	return info, observe(op, start, err), err
}

// save persists k. Persistence failures are logged, never returned: the
// in-memory write already happened.
func (c *Surface) save(ctx context.Context, k *smc.Key) {
	k.MarkPersistent()
	if c.persist == nil {
		return
	}
	if _, err := c.persist.SaveKey(ctx, k); err != nil {
		c.log.Error("failed to save key to nvram", "key", k.Name(), "err", err)
	}
}

func checkIndex(index uint8) error {
	if index >= slots.Capacity {
		return types.Errorf(types.ErrKindOutOfRange, "slot index %d out of range", index)
	}
	return nil
}
