// Package config loads and validates smckit configuration.
//
// Configuration is a YAML document. Absent fields keep the values from
// Default; unknown fields are an error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/smckit/smc"
)

// Config is the root configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Registry RegistryConfig `yaml:"registry"`
	NVRAM    NVRAMConfig    `yaml:"nvram"`
	OEM      OEMConfig      `yaml:"oem"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Sensors  SensorsConfig  `yaml:"sensors"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	File   string `yaml:"file"`
}

// RegistryConfig configures the key store and its startup sources.
type RegistryConfig struct {
	// TypesFile is a YAML types table merged over the embedded defaults.
	TypesFile string `yaml:"types_file"`
	// KeysFile is a YAML key dictionary ingested at startup.
	KeysFile string `yaml:"keys_file"`
	// Reserved lists extra caller-unwritable names.
	Reserved []string `yaml:"reserved" validate:"dive,smcname"`
	Capacity int      `yaml:"capacity" validate:"gte=0,lte=65535"`
}

// NVRAMConfig configures smc/nvram.
type NVRAMConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Path       string   `yaml:"path" validate:"required_if=Enabled true InMemory false"`
	InMemory   bool     `yaml:"in_memory"`
	SyncWrites bool     `yaml:"sync_writes"`
	Exclude    []string `yaml:"exclude" validate:"dive,smcname"`
}

// OEMConfig carries the board identity published as HWS0 and HWS1.
type OEMConfig struct {
	Manufacturer string `yaml:"manufacturer" validate:"max=255"`
	Product      string `yaml:"product" validate:"max=255"`
}

// MetricsConfig configures the Prometheus endpoint of smcctl serve.
type MetricsConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
	Path   string `yaml:"path" validate:"omitempty,startswith=/"`
}

// SensorsConfig declares synthetic sensors registered by smcctl serve.
type SensorsConfig struct {
	Fans []FanConfig `yaml:"fans" validate:"max=16,dive"`
	GPUs []GPUConfig `yaml:"gpus" validate:"max=16,dive"`
}

// FanConfig is a synthetic fan oscillating between Min and Max RPM.
type FanConfig struct {
	Name   string        `yaml:"name" validate:"required"`
	Min    float64       `yaml:"min" validate:"gte=0"`
	Max    float64       `yaml:"max" validate:"gtefield=Min"`
	Period time.Duration `yaml:"period" validate:"gte=0"`
}

// GPUConfig is a synthetic GPU temperature sensor.
type GPUConfig struct {
	Name      string        `yaml:"name" validate:"required"`
	Base      float64       `yaml:"base"`
	Amplitude float64       `yaml:"amplitude" validate:"gte=0"`
	Period    time.Duration `yaml:"period" validate:"gte=0"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("smcname", validateSMCName)
}

func validateSMCName(fl validator.FieldLevel) bool {
	_, err := smc.NormalizeName(fl.Field().String())
	return err == nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		NVRAM: NVRAMConfig{
			Path:       "smckit-nvram",
			SyncWrites: true,
		},
		Metrics: MetricsConfig{Listen: "127.0.0.1:9465", Path: "/metrics"},
	}
}

// Load reads path over Default and validates the result. An empty path
// returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document over Default and validates it.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
