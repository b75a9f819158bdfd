// Package service wires the key store to its startup sources, persistence
// and command surface, and owns their lifecycle.
//
// Startup order: create store, register default types, restore NVRAM,
// publish OEM identity keys, ingest the keys file. Close persists the
// caller-written keys and releases storage.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/joshuapare/smckit/internal/config"
	"github.com/joshuapare/smckit/internal/logger"
	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/command"
	"github.com/joshuapare/smckit/smc/dict"
	"github.com/joshuapare/smckit/smc/nvram"
)

// Service is a running key store.
type Service struct {
	cfg   config.Config
	store *smc.Store
	bank  *nvram.Bank // nil when NVRAM is disabled
	cmds  *command.Surface
	log   *slog.Logger

	mu      sync.Mutex
	sensors []sensorHandle
	closed  bool
}

// New builds a Service from cfg. Failures of the store or NVRAM are fatal;
// rejected entries of the startup sources are logged and skipped.
func New(ctx context.Context, cfg config.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.L

	store, err := smc.NewStore(smc.Options{
		Logger:        log,
		ReservedNames: cfg.Registry.Reserved,
		Capacity:      cfg.Registry.Capacity,
	})
	if err != nil {
		return nil, err
	}

	svc := &Service{cfg: cfg, store: store, log: log}

	if n, err := dict.RegisterDefaults(store); err != nil {
		log.Warn("default types partially registered", "count", n, "err", err)
	}
	if cfg.Registry.TypesFile != "" {
		res, err := dict.LoadFile(store, cfg.Registry.TypesFile)
		if err != nil {
			log.Warn("types file partially loaded", "path", cfg.Registry.TypesFile, "err", err)
		}
		log.Info("types file loaded", "path", cfg.Registry.TypesFile, "types", res.Types, "keys", res.Keys)
	}

	if cfg.NVRAM.Enabled {
		bank, err := nvram.Open(nvram.Config{
			Path:       cfg.NVRAM.Path,
			InMemory:   cfg.NVRAM.InMemory,
			SyncWrites: cfg.NVRAM.SyncWrites,
			Exclude:    cfg.NVRAM.Exclude,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		svc.bank = bank
		n, err := bank.Restore(ctx, store)
		if err != nil {
			log.Warn("some nvram keys were not restored", "err", err)
		}
		log.Info("keys loaded from nvram", "count", n)
	} else {
		log.Warn("nvram is unavailable")
	}

	svc.publishOEM()

	if cfg.Registry.KeysFile != "" {
		if _, err := svc.ReloadKeys(); err != nil {
			log.Warn("keys file partially loaded", "path", cfg.Registry.KeysFile, "err", err)
		}
	}

	opts := command.Options{Logger: log}
	if svc.bank != nil {
		opts.Persister = svc.bank
	}
	svc.cmds = command.New(store, opts)

	log.Info("started", "keys", store.Count())
	return svc, nil
}

// Store returns the key registry.
func (s *Service) Store() *smc.Store { return s.store }

// Commands returns the client command surface.
func (s *Service) Commands() *command.Surface { return s.cmds }

// Config returns the configuration the service was built from.
func (s *Service) Config() config.Config { return s.cfg }

// ReloadKeys ingests the configured keys file again.
func (s *Service) ReloadKeys() (dict.Result, error) {
	path := s.cfg.Registry.KeysFile
	if path == "" {
		return dict.Result{}, nil
	}
	res, err := dict.LoadFile(s.store, path)
	s.log.Info("keys file loaded", "path", path, "keys", res.Keys, "types", res.Types)
	return res, err
}

// Import ingests a key dictionary on behalf of the host. Unlike the
// startup keys file, the imported keys are marked persistent and saved.
// Returns the ingestion counts and the number of keys saved.
func (s *Service) Import(ctx context.Context, path string) (dict.Result, int, error) {
	doc, perr := dict.ParseFile(path)
	if doc == nil {
		return dict.Result{}, 0, perr
	}
	res, aerr := doc.Apply(s.store)
	for _, e := range doc.Keys {
		if s.store.IsReserved(e.Name) {
			continue
		}
		if k, ok := s.store.Key(e.Name); ok {
			k.MarkPersistent()
		}
	}
	saved, err := s.Save(ctx)
	s.log.Info("keys imported", "path", path, "keys", res.Keys, "types", res.Types, "saved", saved)
	return res, saved, errors.Join(perr, aerr, err)
}

// Save persists every caller-written key. It is a no-op without NVRAM.
func (s *Service) Save(ctx context.Context) (int, error) {
	if s.bank == nil {
		return 0, nil
	}
	return s.bank.SaveAll(ctx, s.store)
}

// Close persists host-written keys, stops synthetic sensors and closes
// storage. Calling Close more than once is a no-op.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	if s.bank != nil {
		if _, err := s.bank.SaveAll(ctx, s.store); err != nil {
			errs = append(errs, err)
		}
	}

	s.StopSensors()

	if s.bank != nil {
		if err := s.bank.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.Info("stopped")
	return errors.Join(errs...)
}
