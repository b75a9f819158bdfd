package service

import (
	"errors"
	"time"

	"github.com/joshuapare/smckit/internal/config"
	"github.com/joshuapare/smckit/smc/sensors"
)

type sensorHandle struct {
	fan    bool
	index  uint8
	source string
}

// StartSensors registers the synthetic fans and GPUs declared in cfg.
// Sensors that cannot be registered are skipped and reported.
func (s *Service) StartSensors(cfg config.SensorsConfig) error {
	start := time.Now()
	var errs []error

	for _, f := range cfg.Fans {
		wave := sensors.Wave{
			Base:      (f.Min + f.Max) / 2,
			Amplitude: (f.Max - f.Min) / 2,
			Period:    f.Period,
			Start:     start,
		}
		index, err := sensors.RegisterFan(s.store, sensors.Fan{
			Source: f.Name,
			Min:    f.Min,
			Max:    f.Max,
			RPM:    wave.Read,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.track(sensorHandle{fan: true, index: index, source: f.Name})
		s.log.Info("fan sensor registered", "fan", f.Name, "index", index)
	}

	for _, g := range cfg.GPUs {
		wave := sensors.Wave{Base: g.Base, Amplitude: g.Amplitude, Period: g.Period, Start: start}
		index, err := sensors.RegisterGPU(s.store, sensors.GPU{Source: g.Name, Temperature: wave.Read})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.track(sensorHandle{index: index, source: g.Name})
		s.log.Info("gpu sensor registered", "gpu", g.Name, "index", index)
	}

	return errors.Join(errs...)
}

// StopSensors unregisters every sensor started by StartSensors.
func (s *Service) StopSensors() {
	s.mu.Lock()
	handles := s.sensors
	s.sensors = nil
	s.mu.Unlock()

	for _, h := range handles {
		if h.fan {
			sensors.UnregisterFan(s.store, h.index, h.source)
		} else {
			sensors.UnregisterGPU(s.store, h.index, h.source)
		}
	}
}

func (s *Service) track(h sensorHandle) {
	s.mu.Lock()
	s.sensors = append(s.sensors, h)
	s.mu.Unlock()
}
