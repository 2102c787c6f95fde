// Package colors assigns stable colors to list items. The same (domain, key)
// pair always maps to the same palette entry, across processes and time, so
// a schedule or event keeps its color between refreshes without persisting
// anything.
package colors

import "fmt"

// Seed domains. Namespacing the key keeps two unrelated lists that happen to
// share ids (e.g. event #1 and schedule #1) from landing on correlated colors.
const (
	DomainEvent    = "event"
	DomainSchedule = "schedule"
	DomainNotif    = "notif"
)

var (
	// DefaultPalette is shared by events and schedules.
	DefaultPalette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f"}

	// NotifPalette is the notification badge palette.
	NotifPalette = []string{"#e74c3c", "#27ae60", "#3498db", "#9b59b6", "#f39c12", "#2ecc71"}
)

// Picker maps namespaced keys to palette colors. The zero value is not
// usable; use NewPicker.
type Picker struct {
	palette []string
	single  string
}

// NewPicker returns a Picker over the given palette.
func NewPicker(palette []string) Picker {
	return Picker{palette: palette}
}

// NewSinglePicker returns a Picker that always yields the one configured color.
func NewSinglePicker(color string) Picker {
	return Picker{single: color}
}

// Pick returns the color for key within domain. key may be a string, any
// integer type, or nil (treated as the empty string); anything else is
// formatted with fmt.Sprint.
func (p Picker) Pick(domain string, key interface{}) string {
	if p.single != "" {
		return p.single
	}
	seed := fnv1a(domain + ":" + keyString(key))
	idx := int(mulberry32(seed) * float64(len(p.palette)))
	return p.palette[idx]
}

func keyString(key interface{}) string {
	switch k := key.(type) {
	case nil:
		return ""
	case string:
		return k
	default:
		return fmt.Sprint(k)
	}
}

// fnv1a is the 32-bit FNV-1a hash: XOR each byte then multiply by the FNV
// prime, all modulo 2^32.
func fnv1a(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// mulberry32 runs one step of the mulberry32 generator seeded with a Weyl
// increment and returns a uniform float in [0, 1). uint32 arithmetic wraps,
// matching the >>> 0 / Math.imul semantics of the reference implementation.
func mulberry32(seed uint32) float64 {
	t := seed + 0x6D2B79F5
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}
