package smc

import (
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/smckit/internal/buf"
	"github.com/joshuapare/smckit/internal/logger"
	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc/slots"
)

// defaultCapacity pre-sizes the key table.
const defaultCapacity = 64

// Options configures a Store.
type Options struct {
	// Logger receives registry events. Defaults to logger.L.
	Logger *slog.Logger

	// ReservedNames lists additional caller-unwritable names on top of the
	// two synthetic counters (#KEY, FNum).
	ReservedNames []string

	// Capacity pre-sizes the key table. Zero selects a default of 64.
	Capacity int
}

// Entry is one key of a bulk ingestion batch.
type Entry struct {
	Name  string
	Type  string
	Value []byte
}

// Store is the SMC key registry. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	keys     []*Key
	types    map[uint32]string // well-known default types by packed name
	reserved map[uint32]struct{}

	keyCounter *Key
	fanCounter *Key

	fans slots.Allocator
	gpus slots.Allocator

	log *slog.Logger
}

// NewStore creates a registry holding only the two synthetic counter keys.
// A Store is either fully initialized or not returned at all.
func NewStore(opts Options) (*Store, error) {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	log := opts.Logger
	if log == nil {
		log = logger.L
	}

	s := &Store{
		keys:     make([]*Key, 0, capacity),
		types:    make(map[uint32]string, 16),
		reserved: make(map[uint32]struct{}, 2+len(opts.ReservedNames)),
		log:      log,
	}

	for _, name := range append([]string{types.KeyCounter, types.KeyFanNumber}, opts.ReservedNames...) {
		n, err := NormalizeName(name)
		if err != nil {
			return nil, err
		}
		s.reserved[pack(n)] = struct{}{}
	}

	s.keyCounter = newKey(&s.mu, types.KeyCounter, types.TypeUI32, 4, inlineValue{data: make([]byte, 4)})
	s.keyCounter.derived = true
	s.fanCounter = newKey(&s.mu, types.KeyFanNumber, types.TypeUI8, 1, inlineValue{data: make([]byte, 1)})
	s.fanCounter.derived = true

	s.mu.Lock()
	s.keys = append(s.keys, s.keyCounter, s.fanCounter)
	s.updateKeyCounterLocked()
	s.updateFanCounterLocked()
	s.mu.Unlock()

	return s, nil
}

// Count returns the number of keys, counters included.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// IsReserved reports whether name is caller-unwritable.
func (s *Store) IsReserved(name string) bool {
	n, err := NormalizeName(name)
	if err != nil {
		return false
	}
	_, ok := s.reserved[pack(n)]
	return ok
}

// AddKeyWithValue registers name with an inline value, or updates the value
// of an existing key. value may be nil, which creates a zeroed buffer for a
// new key and leaves an existing key untouched. When non-nil, len(value)
// must equal size.
//
// For a new key the type is typ, else the well-known default for name, else
// empty. An existing key keeps its type.
func (s *Store) AddKeyWithValue(name, typ string, size int, value []byte) (*Key, error) {
	n, t, err := s.checkAdd(name, typ, size)
	if err != nil {
		s.log.Error("failed to create key", "key", name, "err", err)
		return nil, err
	}
	if value != nil && len(value) != size {
		err := types.Errorf(types.ErrKindCreationFailed, "key %s: value is %d bytes, declared size %d", n, len(value), size)
		s.log.Error("failed to create key", "key", name, "err", err)
		return nil, err
	}
	id := pack(n)

	s.mu.Lock()
	if k := s.findLocked(id); k != nil {
		if value != nil {
			if err := k.setValueLocked(value); err != nil {
				s.mu.Unlock()
				s.log.Warn("value update rejected", "key", k.name, "err", err)
				return k, err
			}
		}
		meta := k.metaLocked()
		s.mu.Unlock()

		s.log.Debug("value updated", "key", meta.Name, "type", meta.Type, "size", meta.Size)
		if value != nil {
			s.describeUpdate(id, value)
		}
		return k, nil
	}

	if t == "" {
		t = s.types[id]
	}
	k := newKey(&s.mu, n, t, size, inlineValue{data: buf.Fit(value, size)})
	s.keys = append(s.keys, k)
	s.updateKeyCounterLocked()
	s.mu.Unlock()

	s.log.Debug("key added with value", "key", n, "type", t, "size", size)
	return k, nil
}

// AddKeyWithProvider registers name with a value provider, or arbitrates
// against the provider already installed on an existing key. Type and size
// of an existing key always follow this call, even when arbitration rejects
// the provider; the rejection is reported as ErrPriorityRejected alongside
// the key.
func (s *Store) AddKeyWithProvider(name, typ string, size int, p Provider, priority int) (*Key, error) {
	n, t, err := s.checkAdd(name, typ, size)
	if err == nil && p == nil {
		err = types.Errorf(types.ErrKindCreationFailed, "key %s: nil provider", n)
	}
	if err != nil {
		s.log.Error("failed to create key", "key", name, "err", err)
		return nil, err
	}
	id := pack(n)

	s.mu.Lock()
	if k := s.findLocked(id); k != nil {
		prev, err := k.setProviderLocked(p, priority)
		k.typ = t
		k.size = size
		s.mu.Unlock()

		if err != nil {
			s.log.Error("key already handled with prioritized provider",
				"key", n, "provider", providerName(prev), "rejected", providerName(p))
			return k, err
		}
		if prev != nil {
			s.log.Info("key provider replaced with prioritized provider",
				"key", n, "old", providerName(prev), "new", providerName(p))
		}
		return k, nil
	}

	k := newKey(&s.mu, n, t, size, providedValue{provider: p, priority: priority})
	s.keys = append(s.keys, k)
	s.updateKeyCounterLocked()
	s.mu.Unlock()

	s.log.Debug("key added with provider", "key", n, "type", t, "size", size, "provider", providerName(p))
	return k, nil
}

func (s *Store) checkAdd(name, typ string, size int) (string, string, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return "", "", err
	}
	if _, ok := s.reserved[pack(n)]; ok {
		return "", "", types.Errorf(types.ErrKindReserved, "key %s is reserved", n)
	}
	t, err := NormalizeType(typ)
	if err != nil {
		return "", "", err
	}
	if size < 0 || size > types.MaxValueSize {
		return "", "", types.Errorf(types.ErrKindCreationFailed, "key %s: size %d outside [0,%d]", n, size, types.MaxValueSize)
	}
	return n, t, nil
}

// Key returns the key registered under name. Absence is a normal outcome.
func (s *Store) Key(name string) (*Key, bool) {
	n, err := NormalizeName(name)
	if err != nil {
		s.log.Debug("key not found", "key", name, "err", err)
		return nil, false
	}
	s.mu.Lock()
	k := s.findLocked(pack(n))
	s.mu.Unlock()
	if k == nil {
		s.log.Debug("key not found", "key", n)
		return nil, false
	}
	return k, true
}

// KeyAt returns the key at index in insertion order.
func (s *Store) KeyAt(index int) (*Key, bool) {
	s.mu.Lock()
	var k *Key
	if index >= 0 && index < len(s.keys) {
		k = s.keys[index]
	}
	s.mu.Unlock()
	if k == nil {
		s.log.Debug("key with index not found", "index", index)
		return nil, false
	}
	return k, true
}

// Keys returns a point-in-time snapshot of the key table.
func (s *Store) Keys() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]*Key, len(s.keys))
	copy(keys, s.keys)
	return Snapshot{keys: keys}
}

func (s *Store) findLocked(id uint32) *Key {
	for _, k := range s.keys {
		if k.id == id {
			return k
		}
	}
	return nil
}

// AddKeys ingests a batch of inline keys. Reserved names and malformed
// entries are skipped; the batch always runs to the end. Returns the number
// of keys added or updated and the accumulated per-entry errors.
func (s *Store) AddKeys(entries []Entry) (int, error) {
	var (
		added int
		errs  *multierror.Error
	)
	for _, e := range entries {
		if s.IsReserved(e.Name) {
			s.log.Warn("blocked while trying to set protected key", "key", e.Name)
			errs = multierror.Append(errs, types.Errorf(types.ErrKindReserved, "key %s is reserved", e.Name))
			continue
		}
		if e.Value == nil {
			errs = multierror.Append(errs, types.Errorf(types.ErrKindCreationFailed, "key %s: missing value", e.Name))
			continue
		}
		if _, err := s.AddKeyWithValue(e.Name, e.Type, len(e.Value), e.Value); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		added++
	}
	return added, errs.ErrorOrNil()
}

// RegisterDefaultTypes merges well-known types into the default table
// consulted by AddKeyWithValue when no type is given. Existing keys are not
// changed. Returns the number of entries merged.
func (s *Store) RegisterDefaultTypes(table map[string]string) (int, error) {
	var errs *multierror.Error
	merged := make(map[uint32]string, len(table))
	for name, typ := range table {
		n, err := NormalizeName(name)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		t, err := NormalizeType(typ)
		if err != nil || t == "" {
			if err == nil {
				err = types.Errorf(types.ErrKindCreationFailed, "key %s: empty default type", n)
			}
			errs = multierror.Append(errs, err)
			continue
		}
		merged[pack(n)] = t
	}

	s.mu.Lock()
	for id, t := range merged {
		s.types[id] = t
	}
	s.mu.Unlock()

	return len(merged), errs.ErrorOrNil()
}

// DefaultType returns the well-known type registered for name.
func (s *Store) DefaultType(name string) (string, bool) {
	n, err := NormalizeName(name)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.types[pack(n)]
	return t, ok
}

// DetachProvider removes the named provider from every key it owns. The
// keys fall back to zeroed inline values. Returns the number of keys
// detached.
func (s *Store) DetachProvider(name string) int {
	s.mu.Lock()
	detached := 0
	for _, k := range s.keys {
		if pv, ok := k.src.(providedValue); ok && providerName(pv.provider) == name {
			k.clearProviderLocked()
			detached++
		}
	}
	s.mu.Unlock()

	if detached > 0 {
		s.log.Info("provider detached", "provider", name, "keys", detached)
	}
	return detached
}
