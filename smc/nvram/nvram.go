// Package nvram persists inline key values across restarts.
//
// Each key is stored under the property name "fakesmc-key-<name>-<type>"
// with its raw value bytes as payload. Names are the padded 4-symbol form;
// an untyped key leaves the type part empty.
package nvram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/smckit/internal/logger"
	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc"
)

const prefix = types.KeyPropertyPrefix + "-"

// Bank is a key store in non-volatile storage. It is safe for concurrent use.
type Bank struct {
	db      *badger.DB
	exclude map[uint32]struct{}
	log     *slog.Logger
}

// Open opens the bank described by cfg. Invalid names in cfg.Exclude are
// an error.
func Open(cfg Config) (*Bank, error) {
	exclude := make(map[uint32]struct{}, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		id := smc.PackName(name)
		if id == 0 {
			return nil, types.Errorf(types.ErrKindCreationFailed, "invalid excluded key name %q", name)
		}
		exclude[id] = struct{}{}
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, types.Wrap(types.ErrKindIO, err, "nvram unavailable")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.L
	}
	return &Bank{db: db, exclude: exclude, log: log}, nil
}

// Close flushes and closes the underlying database.
func (b *Bank) Close() error {
	if err := b.db.Close(); err != nil {
		return types.Wrap(types.ErrKindIO, err, "close nvram")
	}
	return nil
}

// PropertyName returns the storage name of a key.
func PropertyName(name, typ string) string {
	return prefix + name + "-" + typ
}

// ParsePropertyName splits a storage name into the key's name and type.
func ParsePropertyName(prop string) (name, typ string, ok bool) {
	rest, found := strings.CutPrefix(prop, prefix)
	if !found || len(rest) < types.NameLen+1 || rest[types.NameLen] != '-' {
		return "", "", false
	}
	name, typ = rest[:types.NameLen], rest[types.NameLen+1:]
	if len(typ) > types.NameLen {
		return "", "", false
	}
	return name, typ, true
}

// Excluded reports whether name is never persisted.
func (b *Bank) Excluded(name string) bool {
	_, ok := b.exclude[smc.PackName(name)]
	return ok
}

// persistable reports whether k holds state worth storing: an inline,
// host-written, non-excluded value.
func (b *Bank) persistable(k *smc.Key) bool {
	if !k.IsPersistent() || k.IsDerived() || b.Excluded(k.Name()) {
		return false
	}
	_, _, provided := k.Provider()
	return !provided
}

// SaveKey stores the current value of k, replacing any earlier record of
// the same name. Keys not marked persistent, derived, provider-backed and
// excluded keys are skipped;
// saved reports whether a record was written.
func (b *Bank) SaveKey(ctx context.Context, k *smc.Key) (saved bool, err error) {
	if !b.persistable(k) {
		return false, nil
	}
	info, err := k.Info(ctx)
	if err != nil {
		return false, err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return b.put(txn, info)
	})
	if err != nil {
		return false, types.Wrap(types.ErrKindIO, err, "save key %s", info.Name)
	}
	b.log.Debug("key saved to nvram", "key", info.Name, "type", info.Type, "size", info.Size)
	return true, nil
}

// SaveAll stores every key of s marked persistent in one transaction batch.
// Returns the number of keys written.
func (b *Bank) SaveAll(ctx context.Context, s *smc.Store) (int, error) {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	var (
		saved int
		errs  *multierror.Error
	)
	for _, k := range s.Keys().All() {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		if !b.persistable(k) {
			continue
		}
		info, err := k.Info(ctx)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := b.dropStale(info.Name, info.Type); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := wb.Set([]byte(PropertyName(info.Name, info.Type)), info.Value); err != nil {
			errs = multierror.Append(errs, types.Wrap(types.ErrKindIO, err, "save key %s", info.Name))
			continue
		}
		saved++
	}
	if err := wb.Flush(); err != nil {
		return 0, types.Wrap(types.ErrKindIO, err, "flush nvram")
	}
	b.log.Info("keys saved to nvram", "count", saved)
	return saved, errs.ErrorOrNil()
}

// Restore adds every stored key to s as an inline value. Records that the
// store rejects (reserved names, provider-owned keys) are skipped. Returns
// the number of keys loaded.
func (b *Bank) Restore(ctx context.Context, s *smc.Store) (int, error) {
	records, err := b.List()
	if err != nil {
		return 0, err
	}

	var (
		count int
		errs  *multierror.Error
	)
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		k, err := s.AddKeyWithValue(r.Name, strings.TrimSpace(r.Type), r.Size, r.Value)
		if err != nil {
			b.log.Warn("nvram key not restored", "key", r.Name, "err", err)
			errs = multierror.Append(errs, err)
			continue
		}
		k.MarkPersistent()
		b.log.Debug("key loaded from nvram", "key", r.Name, "type", r.Type)
		count++
	}
	return count, errs.ErrorOrNil()
}

// List returns every stored record in property-name order.
func (b *Bank) List() ([]types.KeyInfo, error) {
	var out []types.KeyInfo
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name, typ, ok := ParsePropertyName(string(item.Key()))
			if !ok {
				b.log.Warn("ignoring malformed nvram property", "property", string(item.Key()))
				continue
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if len(value) > types.MaxValueSize {
				b.log.Warn("ignoring oversized nvram property", "property", string(item.Key()), "size", len(value))
				continue
			}
			out = append(out, types.KeyInfo{Name: name, Type: typ, Size: len(value), Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, types.Wrap(types.ErrKindIO, err, "scan nvram")
	}
	return out, nil
}

// Forget removes every stored record of name.
func (b *Bank) Forget(name string) error {
	n, err := smc.NormalizeName(name)
	if err != nil {
		return err
	}
	return b.dropStale(n, "\x00")
}

func (b *Bank) put(txn *badger.Txn, info types.KeyInfo) error {
	if err := deleteOthers(txn, info.Name, info.Type); err != nil {
		return err
	}
	return txn.Set([]byte(PropertyName(info.Name, info.Type)), info.Value)
}

// dropStale deletes records of name stored under a type other than typ.
func (b *Bank) dropStale(name, typ string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return deleteOthers(txn, name, typ)
	})
	if err != nil {
		return types.Wrap(types.ErrKindIO, err, "drop stale records of %s", name)
	}
	return nil
}

func deleteOthers(txn *badger.Txn, name, typ string) error {
	keep := PropertyName(name, typ)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)

	var stale [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		prop := string(it.Item().Key())
		n, _, ok := ParsePropertyName(prop)
		if ok && smc.PackName(n) == smc.PackName(name) && prop != keep {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
	}
	it.Close()

	for _, k := range stale {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
