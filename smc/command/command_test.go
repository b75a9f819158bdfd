package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smctest "github.com/joshuapare/smckit/internal/testutil"
	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/slots"
)

type recordingPersister struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (p *recordingPersister) SaveKey(_ context.Context, k *smc.Key) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return false, p.err
	}
	p.saved = append(p.saved, k.Name())
	return true, nil
}

func newSurface(t *testing.T, p Persister) *Surface {
	t.Helper()
	return New(smctest.NewStore(t), Options{Persister: p})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, Success},
		{types.ErrNotFound, NotFound},
		{types.ErrPriorityRejected, Rejected},
		{types.ErrWrongMode, Rejected},
		{types.ErrReserved, Rejected},
		{types.ErrAlreadyTaken, Rejected},
		{types.ErrExhausted, Rejected},
		{types.ErrCreationFailed, BadArgument},
		{types.ErrOutOfRange, BadArgument},
		{types.ErrIO, Failure},
		{fmt.Errorf("wrapped: %w", types.ErrNotFound), NotFound},
		{errors.New("boom"), Failure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), "%v", tt.err)
	}
	assert.Equal(t, "bad_argument", BadArgument.String())
}

func TestAddValue_GetByName(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{}
	c := newSurface(t, p)

	info, st, err := c.AddValue(ctx, "NATJ", "ui8 ", 1, []byte{2})
	require.NoError(t, err)
	require.Equal(t, Success, st)
	require.Equal(t, "NATJ", info.Name)
	require.Equal(t, []string{"NATJ"}, p.saved)
	k, ok := c.Store().Key("NATJ")
	require.True(t, ok)
	require.True(t, k.IsPersistent(), "host writes are marked for NVRAM")

	got, st, err := c.GetByName(ctx, "natj")
	require.NoError(t, err)
	require.Equal(t, Success, st)
	require.Equal(t, []byte{2}, got.Value)

	_, st, err = c.GetByName(ctx, "NOPE")
	require.ErrorIs(t, err, types.ErrNotFound)
	require.Equal(t, NotFound, st)
}

func TestAddValue_BadArguments(t *testing.T) {
	ctx := context.Background()
	c := newSurface(t, nil)

	_, st, err := c.AddValue(ctx, "NATJ", "ui8 ", 0, nil)
	require.Error(t, err)
	require.Equal(t, BadArgument, st)

	_, st, _ = c.AddValue(ctx, "TOOLONG", "ui8 ", 1, []byte{1})
	require.Equal(t, BadArgument, st)

	_, st, err = c.AddValue(ctx, types.KeyFanNumber, "ui8 ", 1, []byte{9})
	require.ErrorIs(t, err, types.ErrReserved)
	require.Equal(t, Rejected, st)
}

func TestAddProvider_Arbitration(t *testing.T) {
	ctx := context.Background()
	c := newSurface(t, nil)

	_, st, err := c.AddProvider("TC0P", "sp78", 2, smctest.StaticProvider("p1", 1, 0), 5)
	require.NoError(t, err)
	require.Equal(t, Success, st)

	info, st, err := c.AddProvider("TC0P", "sp78", 2, smctest.StaticProvider("p2", 2, 0), 3)
	require.ErrorIs(t, err, types.ErrPriorityRejected)
	require.Equal(t, Rejected, st)
	require.Equal(t, "p1", info.Provider)

	_, st, _ = c.AddProvider("TC0P", "sp78", 2, nil, 9)
	require.Equal(t, BadArgument, st)

	got, _, err := c.GetByName(ctx, "TC0P")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0}, got.Value)
	k, _ := c.Store().Key("TC0P")
	require.False(t, k.IsPersistent(), "provider keys are never persisted")

	n, st, err := c.RemoveProvider("p1")
	require.NoError(t, err)
	require.Equal(t, Success, st)
	require.Equal(t, 1, n)

	_, st, _ = c.RemoveProvider("")
	require.Equal(t, BadArgument, st)
}

func TestSetValue(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{}
	c := newSurface(t, p)

	_, _, err := c.AddValue(ctx, "MSDW", "flag", 1, []byte{0})
	require.NoError(t, err)
	st, err := c.SetValue(ctx, "MSDW", []byte{1})
	require.NoError(t, err)
	require.Equal(t, Success, st)
	require.Equal(t, []string{"MSDW", "MSDW"}, p.saved)

	st, _ = c.SetValue(ctx, "NONE", []byte{1})
	require.Equal(t, NotFound, st)

	st, _ = c.SetValue(ctx, "MSDW", nil)
	require.Equal(t, BadArgument, st)

	st, err = c.SetValue(ctx, types.KeyCounter, []byte{0, 0, 0, 1})
	require.ErrorIs(t, err, types.ErrReserved)
	require.Equal(t, Rejected, st)

	_, _, err = c.AddProvider("TC0P", "sp78", 2, smctest.StaticProvider("p1"), 0)
	require.NoError(t, err)
	st, err = c.SetValue(ctx, "TC0P", []byte{1, 2})
	require.ErrorIs(t, err, types.ErrWrongMode)
	require.Equal(t, Rejected, st)
}

func TestSetValue_PersistFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{err: types.ErrIO}
	c := newSurface(t, p)

	_, st, err := c.AddValue(ctx, "MSAL", "ui8 ", 1, []byte{1})
	require.NoError(t, err)
	require.Equal(t, Success, st)
}

func TestGetByIndex_GetAll(t *testing.T) {
	ctx := context.Background()
	c := newSurface(t, nil)

	info, st, err := c.GetByIndex(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	require.Equal(t, types.KeyCounter, info.Name)
	require.Equal(t, []byte{0, 0, 0, 2}, info.Value)

	_, st, _ = c.GetByIndex(ctx, 2)
	require.Equal(t, NotFound, st)
	_, st, _ = c.GetByIndex(ctx, -1)
	require.Equal(t, NotFound, st)

	failing := smctest.FailingProvider("broken", errors.New("sensor offline"))
	_, _, err = c.AddProvider("TB0T", "sp78", 2, failing, 0)
	require.NoError(t, err)

	all, st, err := c.GetAll(ctx)
	require.ErrorIs(t, err, types.ErrIO)
	require.Equal(t, Failure, st)
	require.Len(t, all, 3)
	require.Equal(t, "broken", all[2].Provider)
	require.Nil(t, all[2].Value)
}

func TestSlots(t *testing.T) {
	ctx := context.Background()
	c := newSurface(t, nil)

	for want := uint8(0); want < slots.Capacity; want++ {
		i, st, err := c.TakeVacantFan()
		require.NoError(t, err)
		require.Equal(t, Success, st)
		require.Equal(t, want, i)
	}
	i, st, err := c.TakeVacantFan()
	require.ErrorIs(t, err, types.ErrExhausted)
	require.Equal(t, Rejected, st)
	require.Equal(t, uint8(slots.None), i)

	st, err = c.ReleaseFan(15)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	fnum, _, err := c.GetByName(ctx, types.KeyFanNumber)
	require.NoError(t, err)
	require.Equal(t, []byte{15}, fnum.Value)

	st, _ = c.ReleaseFan(16)
	require.Equal(t, BadArgument, st)

	st, err = c.TakeGPU(3)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	st, err = c.TakeGPU(3)
	require.ErrorIs(t, err, types.ErrAlreadyTaken)
	require.Equal(t, Rejected, st)
	st, _ = c.TakeGPU(16)
	require.Equal(t, BadArgument, st)

	i, _, err = c.TakeVacantGPU()
	require.NoError(t, err)
	require.Equal(t, uint8(0), i)

	st, err = c.ReleaseGPU(3)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	require.Equal(t, uint16(1), c.Store().GPUSlots())
	st, _ = c.ReleaseGPU(200)
	require.Equal(t, BadArgument, st)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	c := newSurface(t, nil)

	before := testutil.ToFloat64(commandsTotal.WithLabelValues(OpGetByName, NotFound.String()))
	_, _, _ = c.GetByName(ctx, "ZZZZ")
	_, _, _ = c.GetByName(ctx, "ZZZY")
	after := testutil.ToFloat64(commandsTotal.WithLabelValues(OpGetByName, NotFound.String()))
	require.Equal(t, 2.0, after-before)
}
