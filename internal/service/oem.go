package service

import (
	"strings"

	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc/codec"
)

// OEM identity keys.
const (
	KeyManufacturer = "HWS0"
	KeyProduct      = "HWS1"
)

// vendorNames maps firmware OEM vendor strings to short manufacturer
// names, matched by prefix, case-insensitively.
var vendorNames = []struct{ prefix, name string }{
	{"ASUSTEK", "ASUS"},
	{"ASROCK", "ASRock"},
	{"GIGA-BYTE", "Gigabyte"},
	{"GIGABYTE", "Gigabyte"},
	{"MICRO-STAR", "MSI"},
	{"MSI", "MSI"},
	{"HEWLETT-PACKARD", "HP"},
	{"DELL", "Dell"},
	{"LENOVO", "Lenovo"},
	{"INTEL", "Intel"},
	{"APPLE", "Apple"},
	{"FUJITSU", "Fujitsu"},
	{"ACER", "Acer"},
	{"TOSHIBA", "Toshiba"},
	{"SAMSUNG", "Samsung"},
	{"SONY", "Sony"},
	{"ZOTAC", "ZOTAC"},
	{"BIOSTAR", "Biostar"},
	{"EVGA", "EVGA"},
	{"SUPERMICRO", "Supermicro"},
}

// ManufacturerName shortens a firmware OEM vendor string. Unknown vendors
// are returned trimmed.
func ManufacturerName(vendor string) string {
	v := strings.TrimSpace(strings.TrimRight(vendor, "\x00"))
	upper := strings.ToUpper(v)
	for _, n := range vendorNames {
		if strings.HasPrefix(upper, n.prefix) {
			return n.name
		}
	}
	return v
}

// publishOEM adds HWS0 and HWS1 from configuration. Empty values are
// skipped.
func (s *Service) publishOEM() {
	oem := s.cfg.OEM
	if oem.Manufacturer == "" || oem.Product == "" {
		s.log.Error("OEM identity incomplete, platform profiles will be unavailable",
			"manufacturer", oem.Manufacturer, "product", oem.Product)
	}
	for _, kv := range [...]struct{ name, value string }{
		{KeyManufacturer, ManufacturerName(oem.Manufacturer)},
		{KeyProduct, strings.TrimSpace(oem.Product)},
	} {
		name, value := kv.name, kv.value
		if value == "" {
			continue
		}
		data, err := codec.EncodeString(value)
		if err != nil {
			s.log.Warn("cannot publish OEM key", "key", name, "err", err)
			continue
		}
		if _, err := s.store.AddKeyWithValue(name, types.TypeCH8, len(data), data); err != nil {
			s.log.Warn("cannot publish OEM key", "key", name, "err", err)
		}
	}
}
