package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIs_MatchesKind(t *testing.T) {
	err := Errorf(ErrKindNotFound, "key %s not found", "TC0P")
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrReserved)
	require.Equal(t, "key TC0P not found", err.Error())
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save: %w", Wrap(ErrKindIO, cause, "persist %s", "TC0P"))

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrIO)
	require.Equal(t, "save: persist TC0P: disk full", err.Error())

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrKindIO, kind)
}

func TestKindOf_Untyped(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	require.False(t, ok)
	_, ok = KindOf(nil)
	require.False(t, ok)
}

func TestErrKindString(t *testing.T) {
	require.Equal(t, "priority-rejected", ErrKindPriorityRejected.String())
	require.Equal(t, "kind-99", ErrKind(99).String())
}

func TestTypeSize(t *testing.T) {
	for typ, want := range map[string]int{TypeUI8: 1, TypeFlag: 1, TypeSP78: 2, TypeFPE2: 2, TypeUI32: 4} {
		got, ok := TypeSize(typ)
		require.True(t, ok, typ)
		require.Equal(t, want, got, typ)
	}
	_, ok := TypeSize(TypeCH8)
	require.False(t, ok)
}
