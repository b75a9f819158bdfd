package smc

import (
	"context"
	"sync"

	"github.com/joshuapare/smckit/internal/buf"
	"github.com/joshuapare/smckit/pkg/types"
)

// valueSource is the sum type behind a key's value: exactly one of
// inlineValue or providedValue.
type valueSource interface {
	isValueSource()
}

// inlineValue owns a buffer of exactly the key's size.
type inlineValue struct {
	data []byte
}

// providedValue delegates to a provider; the key holds no bytes.
type providedValue struct {
	provider Provider
	priority int
}

func (inlineValue) isValueSource()   {}
func (providedValue) isValueSource() {}

// Key is a named, typed, fixed-size value holder. Keys are created and owned
// by a Store and share its access lock; they are never deleted.
type Key struct {
	mu      *sync.Mutex // owning Store's access lock
	name    string      // normalized, as first registered
	id      uint32      // packed identity
	typ     string
	size    int
	src     valueSource
	derived bool // synthetic counter, caller-unwritable
	persist bool // written by a host command or restored from NVRAM
}

func newKey(mu *sync.Mutex, name string, typ string, size int, src valueSource) *Key {
	return &Key{
		mu:   mu,
		name: name,
		id:   pack(name),
		typ:  typ,
		size: size,
		src:  src,
	}
}

// Name returns the key's 4-symbol name.
func (k *Key) Name() string { return k.name }

// ID returns the packed identity of the key's name.
func (k *Key) ID() uint32 { return k.id }

// Type returns the key's type tag.
func (k *Key) Type() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.typ
}

// Size returns the key's declared value size.
func (k *Key) Size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.size
}

// IsDerived reports whether the key is a synthetic counter.
func (k *Key) IsDerived() bool { return k.derived }

// Provider returns the installed provider and its priority. ok is false when
// the key holds an inline value.
func (k *Key) Provider() (p Provider, priority int, ok bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if pv, isProvided := k.src.(providedValue); isProvided {
		return pv.provider, pv.priority, true
	}
	return nil, 0, false
}

// MarkPersistent flags the key as host-written state that belongs in NVRAM.
// Keys published by startup sources or sensors are never flagged. Derived
// keys ignore the call.
func (k *Key) MarkPersistent() {
	if k.derived {
		return
	}
	k.mu.Lock()
	k.persist = true
	k.mu.Unlock()
}

// IsPersistent reports whether MarkPersistent was called.
func (k *Key) IsPersistent() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.persist
}

// Priority returns the installed provider's priority, or 0 for an inline key.
func (k *Key) Priority() int {
	_, prio, _ := k.Provider()
	return prio
}

// SetValue replaces the inline value. The declared size follows len(data).
// Fails with ErrWrongMode when a provider owns the key and with ErrReserved
// for synthetic counters.
func (k *Key) SetValue(data []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.setValueLocked(data)
}

// SetProvider installs p unless a provider with a higher priority is already
// installed, in which case ErrPriorityRejected is returned and the existing
// provider is kept. Equal priority replaces.
func (k *Key) SetProvider(p Provider, priority int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, err := k.setProviderLocked(p, priority)
	return err
}

// ClearProvider switches a provider-backed key back to an inline, zeroed
// buffer of the declared size. Reports whether a provider was removed.
func (k *Key) ClearProvider() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.clearProviderLocked()
}

// Value returns exactly Size() bytes: a copy of the inline buffer, or the
// provider's output padded or truncated. The provider runs without the
// access lock held.
func (k *Key) Value(ctx context.Context) ([]byte, error) {
	k.mu.Lock()
	size := k.size
	src := k.src
	k.mu.Unlock()

	switch v := src.(type) {
	case inlineValue:
		return buf.Fit(v.data, size), nil
	case providedValue:
		data, err := v.provider.ReadValue(ctx, k.name, size)
		if err != nil {
			return nil, types.Wrap(types.ErrKindIO, err, "provider %s failed to read key %s", providerName(v.provider), k.name)
		}
		return buf.Fit(data, size), nil
	default:
		return make([]byte, size), nil
	}
}

// Meta returns the key's metadata without materializing its value.
func (k *Key) Meta() types.KeyInfo {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.metaLocked()
}

// Info returns the key's metadata together with its current value.
func (k *Key) Info(ctx context.Context) (types.KeyInfo, error) {
	info := k.Meta()
	v, err := k.Value(ctx)
	if err != nil {
		return info, err
	}
	info.Value = v
	// Size may have moved between Meta and Value; Value is authoritative.
	info.Size = len(v)
	return info, nil
}

func (k *Key) metaLocked() types.KeyInfo {
	info := types.KeyInfo{
		Name:    k.name,
		Type:    k.typ,
		Size:    k.size,
		Derived: k.derived,
	}
	if pv, ok := k.src.(providedValue); ok {
		info.Provider = providerName(pv.provider)
		info.Priority = pv.priority
	}
	return info
}

func (k *Key) setValueLocked(data []byte) error {
	if k.derived {
		return types.Errorf(types.ErrKindReserved, "key %s is derived and cannot be written", k.name)
	}
	if pv, ok := k.src.(providedValue); ok {
		return types.Errorf(types.ErrKindWrongMode, "key %s value is owned by provider %s", k.name, providerName(pv.provider))
	}
	if len(data) > types.MaxValueSize {
		return types.Errorf(types.ErrKindCreationFailed, "key %s value of %d bytes exceeds %d", k.name, len(data), types.MaxValueSize)
	}
	k.src = inlineValue{data: buf.Clone(data)}
	k.size = len(data)
	return nil
}

// storeDerivedLocked writes a counter value, bypassing the derived guard.
func (k *Key) storeDerivedLocked(data []byte) {
	k.src = inlineValue{data: data}
	k.size = len(data)
}

// setProviderLocked applies priority arbitration. It returns the provider
// that was installed before the call, if any.
func (k *Key) setProviderLocked(p Provider, priority int) (Provider, error) {
	if k.derived {
		return nil, types.Errorf(types.ErrKindReserved, "key %s is derived and cannot take a provider", k.name)
	}
	if p == nil {
		return nil, types.Errorf(types.ErrKindCreationFailed, "key %s: nil provider", k.name)
	}
	pv, ok := k.src.(providedValue)
	if !ok {
		k.src = providedValue{provider: p, priority: priority}
		return nil, nil
	}
	if priority < pv.priority {
		return pv.provider, types.Errorf(types.ErrKindPriorityRejected,
			"key %s already handled with prioritized provider %s (priority %d > %d)",
			k.name, providerName(pv.provider), pv.priority, priority)
	}
	k.src = providedValue{provider: p, priority: priority}
	return pv.provider, nil
}

func (k *Key) clearProviderLocked() bool {
	if _, ok := k.src.(providedValue); !ok {
		return false
	}
	k.src = inlineValue{data: make([]byte, k.size)}
	return true
}
