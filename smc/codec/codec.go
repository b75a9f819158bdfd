// Package codec encodes and decodes SMC key payloads.
//
// Numeric payloads are big-endian. Fixed-point types:
//
//	fpe2  unsigned, 14 integer bits, 2 fraction bits (fan RPM)
//	fp88  unsigned, 8 integer bits, 8 fraction bits
//	sp78  signed, 7 integer bits, 8 fraction bits (temperatures)
//
// ch8* payloads are Windows-1252 text.
package codec

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/smckit/internal/buf"
	"github.com/joshuapare/smckit/pkg/types"
)

// Encode converts v to the payload of the fixed-width type typ.
// Out-of-range values are clamped to the type's range.
func Encode(typ string, v float64) ([]byte, error) {
	switch typ {
	case types.TypeUI8:
		return []byte{uint8(clamp(math.Round(v), 0, math.MaxUint8))}, nil
	case types.TypeSI8:
		return []byte{byte(int8(clamp(math.Round(v), math.MinInt8, math.MaxInt8)))}, nil
	case types.TypeFlag:
		if v != 0 {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case types.TypeUI16:
		return buf.BE16(uint16(clamp(math.Round(v), 0, math.MaxUint16))), nil
	case types.TypeSI16:
		return buf.BE16(uint16(int16(clamp(math.Round(v), math.MinInt16, math.MaxInt16)))), nil
	case types.TypeUI32:
		return buf.BE32(uint32(clamp(math.Round(v), 0, math.MaxUint32))), nil
	case types.TypeFPE2:
		return buf.BE16(uint16(clamp(math.Round(v*4), 0, math.MaxUint16))), nil
	case types.TypeFP88:
		return buf.BE16(uint16(clamp(math.Round(v*256), 0, math.MaxUint16))), nil
	case types.TypeSP78:
		return buf.BE16(uint16(int16(clamp(math.Round(v*256), math.MinInt16, math.MaxInt16)))), nil
	default:
		return nil, types.Errorf(types.ErrKindCreationFailed, "cannot encode numeric value as %q", typ)
	}
}

// Decode converts the payload of a fixed-width type to a number.
func Decode(typ string, data []byte) (float64, error) {
	if want, ok := types.TypeSize(typ); ok && len(data) < want {
		return 0, types.Errorf(types.ErrKindCreationFailed, "%q payload is %d bytes, want %d", typ, len(data), want)
	}
	switch typ {
	case types.TypeUI8, types.TypeFlag:
		return float64(data[0]), nil
	case types.TypeSI8:
		return float64(int8(data[0])), nil
	case types.TypeUI16:
		return float64(buf.U16BE(data)), nil
	case types.TypeSI16:
		return float64(buf.I16BE(data)), nil
	case types.TypeUI32:
		return float64(buf.U32BE(data)), nil
	case types.TypeFPE2:
		return float64(buf.U16BE(data)) / 4, nil
	case types.TypeFP88:
		return float64(buf.U16BE(data)) / 256, nil
	case types.TypeSP78:
		return float64(buf.I16BE(data)) / 256, nil
	default:
		return 0, types.Errorf(types.ErrKindCreationFailed, "cannot decode %q as a number", typ)
	}
}

// EncodeString converts UTF-8 text to a ch8* payload.
func EncodeString(s string) ([]byte, error) {
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q to Windows-1252: %w", s, err)
	}
	if len(encoded) > types.MaxValueSize {
		return nil, types.Errorf(types.ErrKindCreationFailed, "string of %d bytes exceeds %d", len(encoded), types.MaxValueSize)
	}
	return encoded, nil
}

var hexSeparators = strings.NewReplacer(" ", "", ":", "")

// ParseHex decodes a hex payload such as "0x00 00 07 a0" or "de:ad".
// Spaces, colons and a leading 0x are ignored.
func ParseHex(s string) ([]byte, error) {
	clean := hexSeparators.Replace(strings.TrimSpace(s))
	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
		clean = clean[2:]
	}
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, types.Wrap(types.ErrKindCreationFailed, err, "invalid hex value %q", s)
	}
	if len(b) > types.MaxValueSize {
		return nil, types.Errorf(types.ErrKindCreationFailed, "hex value of %d bytes exceeds %d", len(b), types.MaxValueSize)
	}
	return b, nil
}

// DecodeString converts a ch8* payload to UTF-8, dropping trailing NULs.
func DecodeString(data []byte) (string, error) {
	data = bytes.TrimRight(data, "\x00")
	if isASCII(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode Windows-1252 string: %w", err)
	}
	return string(decoded), nil
}

// Format renders a payload for display. Unknown types and undecodable
// payloads fall back to hex.
func Format(typ string, data []byte) string {
	if typ == types.TypeCH8 {
		if s, err := DecodeString(data); err == nil {
			return strconv.Quote(s)
		}
	}
	if typ == types.TypeFlag && len(data) > 0 {
		return strconv.FormatBool(data[0] != 0)
	}
	if v, err := Decode(typ, data); err == nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("% x", data)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
