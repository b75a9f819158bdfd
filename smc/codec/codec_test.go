package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/smckit/pkg/types"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		typ  string
		in   float64
		want []byte
	}{
		{types.TypeUI8, 200, []byte{200}},
		{types.TypeSI8, -3, []byte{0xfd}},
		{types.TypeUI16, 0x1234, []byte{0x12, 0x34}},
		{types.TypeSI16, -2, []byte{0xff, 0xfe}},
		{types.TypeUI32, 2, []byte{0, 0, 0, 2}},
		{types.TypeFPE2, 1200, []byte{0x12, 0xc0}},
		{types.TypeFP88, 1.5, []byte{0x01, 0x80}},
		{types.TypeSP78, 40.5, []byte{0x28, 0x80}},
		{types.TypeSP78, -1, []byte{0xff, 0x00}},
		{types.TypeFlag, 1, []byte{1}},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, err := Encode(tt.typ, tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			back, err := Decode(tt.typ, got)
			require.NoError(t, err)
			require.Equal(t, tt.in, back)
		})
	}
}

func TestEncode_Clamps(t *testing.T) {
	got, err := Encode(types.TypeUI8, 300)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff}, got)

	got, err = Encode(types.TypeFPE2, -5)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0}, got)
}

func TestEncode_UnknownType(t *testing.T) {
	_, err := Encode(types.TypeCH8, 1)
	require.ErrorIs(t, err, types.ErrCreationFailed)
	_, err = Decode("????", []byte{1})
	require.Error(t, err)
}

func TestDecode_ShortPayload(t *testing.T) {
	_, err := Decode(types.TypeUI32, []byte{1, 2})
	require.ErrorIs(t, err, types.ErrCreationFailed)
}

func TestStrings(t *testing.T) {
	data, err := EncodeString("Café")
	require.NoError(t, err)
	require.Equal(t, []byte{'C', 'a', 'f', 0xe9}, data)

	s, err := DecodeString(append(data, 0, 0))
	require.NoError(t, err)
	require.Equal(t, "Café", s)

	_, err = EncodeString("日本")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "40.5", Format(types.TypeSP78, []byte{0x28, 0x80}))
	require.Equal(t, `"ASUS"`, Format(types.TypeCH8, []byte("ASUS")))
	require.Equal(t, "true", Format(types.TypeFlag, []byte{1}))
	require.Equal(t, "de ad", Format("{hex", []byte{0xde, 0xad}))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"0a", []byte{0x0a}},
		{"0x00 00 07 a0", []byte{0, 0, 7, 0xa0}},
		{"0X0102", []byte{1, 2}},
		{"de:ad:BE:ef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{" 01 ", []byte{1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"xyz", "123"} {
		_, err := ParseHex(bad)
		require.ErrorIs(t, err, types.ErrCreationFailed, bad)
	}

	empty, err := ParseHex("0x")
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = ParseHex(strings.Repeat("00", types.MaxValueSize+1))
	require.ErrorIs(t, err, types.ErrCreationFailed)
}
