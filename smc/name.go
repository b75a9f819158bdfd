package smc

import (
	"encoding/binary"
	"strings"

	"github.com/joshuapare/smckit/pkg/types"
)

// NormalizeName validates a key name and right-pads it with spaces to
// exactly four symbols.
func NormalizeName(name string) (string, error) {
	if err := checkSymbol(name); err != nil {
		return "", types.Wrap(types.ErrKindCreationFailed, err, "invalid key name %q", name)
	}
	return pad(name), nil
}

// NormalizeType validates a type tag and pads it like a name. The empty tag
// is valid and means "no type".
func NormalizeType(typ string) (string, error) {
	if typ == "" {
		return "", nil
	}
	if err := checkSymbol(typ); err != nil {
		return "", types.Wrap(types.ErrKindCreationFailed, err, "invalid key type %q", typ)
	}
	return pad(typ), nil
}

// PackName returns the identity of a name: the padded name with ASCII
// letters upper-cased, read as a big-endian uint32. Invalid names pack to 0.
func PackName(name string) uint32 {
	n, err := NormalizeName(name)
	if err != nil {
		return 0
	}
	return pack(n)
}

// pack expects a normalized 4-symbol name.
func pack(n string) uint32 {
	var b [types.NameLen]byte
	for i := range b {
		c := n[i]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		b[i] = c
	}
	return binary.BigEndian.Uint32(b[:])
}

func pad(s string) string {
	if len(s) >= types.NameLen {
		return s
	}
	return s + strings.Repeat(" ", types.NameLen-len(s))
}

func checkSymbol(s string) error {
	if len(s) == 0 || len(s) > types.NameLen {
		return types.Errorf(types.ErrKindCreationFailed, "must be 1-%d symbols, got %d", types.NameLen, len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return types.Errorf(types.ErrKindCreationFailed, "non-printable symbol 0x%02x at %d", s[i], i)
		}
	}
	return nil
}
