package sensors

import (
	"context"
	"math"
	"time"

	"github.com/joshuapare/smckit/internal/buf"
	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/codec"
)

// Constant returns a provider that always yields value.
func Constant(name string, value []byte) smc.Provider {
	v := buf.Clone(value)
	return smc.NewProviderFunc(name, func(context.Context, string, int) ([]byte, error) {
		return buf.Clone(v), nil
	})
}

// Numeric returns a provider that encodes read() as typ on every read.
func Numeric(name, typ string, read func() float64) smc.Provider {
	return smc.NewProviderFunc(name, func(context.Context, string, int) ([]byte, error) {
		return codec.Encode(typ, read())
	})
}

// Wave is a deterministic sine signal used to animate synthetic readings.
type Wave struct {
	Base      float64
	Amplitude float64
	Period    time.Duration
	Start     time.Time
	Now       func() time.Time // defaults to time.Now
}

// At returns the signal at t.
func (w Wave) At(t time.Time) float64 {
	if w.Period <= 0 {
		return w.Base
	}
	phase := float64(t.Sub(w.Start)%w.Period) / float64(w.Period)
	return w.Base + w.Amplitude*math.Sin(2*math.Pi*phase)
}

// Read returns the signal now.
func (w Wave) Read() float64 {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return w.At(now())
}
