// Package testutil holds helpers shared by the key store tests.
package testutil

import (
	"context"
	"testing"

	"github.com/joshuapare/smckit/smc"
)

// NewStore creates an empty store holding only the counter keys.
// Fails the test if the store cannot be created.
//
// Example:
//
//	s := testutil.NewStore(t)
//	k, err := s.AddKeyWithValue("NATJ", "ui8 ", 1, []byte{0})
func NewStore(t *testing.T, opts ...smc.Options) *smc.Store {
	t.Helper()
	var o smc.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	s, err := smc.NewStore(o)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

// Value reads the current value of a key by name.
// Fails the test if the key is missing or its provider fails.
func Value(t *testing.T, s *smc.Store, name string) []byte {
	t.Helper()
	k, ok := s.Key(name)
	if !ok {
		t.Fatalf("Key %s not found", name)
	}
	v, err := k.Value(context.Background())
	if err != nil {
		t.Fatalf("Failed to read key %s: %v", name, err)
	}
	return v
}

// StaticProvider returns a provider that always reports value.
func StaticProvider(name string, value ...byte) smc.Provider {
	return smc.NewProviderFunc(name, func(context.Context, string, int) ([]byte, error) {
		return value, nil
	})
}

// FailingProvider returns a provider whose reads always fail with err.
func FailingProvider(name string, err error) smc.Provider {
	return smc.NewProviderFunc(name, func(context.Context, string, int) ([]byte, error) {
		return nil, err
	})
}

// AddPersistent adds an inline key and marks it as host-written, the way
// the command surface does before saving to NVRAM.
func AddPersistent(t *testing.T, s *smc.Store, name, typ string, value []byte) *smc.Key {
	t.Helper()
	k, err := s.AddKeyWithValue(name, typ, len(value), value)
	if err != nil {
		t.Fatalf("Failed to add key %s: %v", name, err)
	}
	k.MarkPersistent()
	return k
}
