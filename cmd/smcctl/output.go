package main

import (
	"fmt"
	"strings"

	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc/codec"
)

// keyView is the JSON shape of a key.
type keyView struct {
	types.KeyInfo
	Hex     string `json:"hex"`
	Decoded string `json:"decoded,omitempty"`
}

func viewOf(info types.KeyInfo) keyView {
	return keyView{
		KeyInfo: info,
		Hex:     fmt.Sprintf("%x", info.Value),
		Decoded: codec.Format(info.Type, info.Value),
	}
}

// formatKey renders one key as a text line.
func formatKey(info types.KeyInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s  [%-4s]  %3d  ", info.Name, info.Type, info.Size)
	if info.Value == nil && info.IsProvided() {
		b.WriteString("<unavailable>")
	} else {
		fmt.Fprintf(&b, "(bytes % x)  %s", info.Value, codec.Format(info.Type, info.Value))
	}
	if info.IsProvided() {
		fmt.Fprintf(&b, "  <- %s (priority %d)", info.Provider, info.Priority)
	}
	if info.Derived {
		b.WriteString("  [derived]")
	}
	return b.String()
}
