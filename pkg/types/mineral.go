// Package types defines the core domain types shared across Lithograph:
// mineral records, technical attribute values, analysis results, and
// report artifacts.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// EnglishLang is the authoritative language code. Every published mineral
// carries an English metadata entry; other languages may be absent.
const EnglishLang = "en"

// LocalizedText maps a language code to text. English is authoritative.
type LocalizedText map[string]string

// Resolve returns the text for lang, falling back to English when the
// requested language has no entry.
func (t LocalizedText) Resolve(lang string) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	return t[EnglishLang]
}

// AttributeKind discriminates the variants of an AttributeValue.
type AttributeKind string

const (
	AttributeText   AttributeKind = "text"
	AttributeNumber AttributeKind = "number"
	AttributeBool   AttributeKind = "bool"
)

// AttributeValue is a tagged value for a free-form technical attribute.
// Exactly one of Text, Number, or Bool is meaningful, selected by Kind.
type AttributeValue struct {
	Kind   AttributeKind `json:"kind"`
	Text   string        `json:"text,omitempty"`
	Number float64       `json:"number,omitempty"`
	Bool   bool          `json:"bool,omitempty"`
}

// TextAttribute creates a text-valued attribute.
func TextAttribute(v string) AttributeValue {
	return AttributeValue{Kind: AttributeText, Text: v}
}

// NumberAttribute creates a numeric attribute.
func NumberAttribute(v float64) AttributeValue {
	return AttributeValue{Kind: AttributeNumber, Number: v}
}

// BoolAttribute creates a boolean attribute.
func BoolAttribute(v bool) AttributeValue {
	return AttributeValue{Kind: AttributeBool, Bool: v}
}

// IsZero reports whether the attribute carries no usable value.
func (v AttributeValue) IsZero() bool {
	switch v.Kind {
	case AttributeText:
		return v.Text == ""
	case AttributeNumber, AttributeBool:
		return false
	default:
		return true
	}
}

// String renders the attribute for display. Unknown kinds render empty.
func (v AttributeValue) String() string {
	switch v.Kind {
	case AttributeText:
		return v.Text
	case AttributeNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case AttributeBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// AttributeFromAny converts a decoded JSON value into a tagged attribute.
// Unknown shapes fall back to their fmt representation as text.
func AttributeFromAny(v interface{}) AttributeValue {
	switch val := v.(type) {
	case string:
		return TextAttribute(val)
	case float64:
		return NumberAttribute(val)
	case bool:
		return BoolAttribute(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return NumberAttribute(f)
		}
		return TextAttribute(val.String())
	default:
		return TextAttribute(fmt.Sprintf("%v", v))
	}
}

// ExpectedAttributes are the technical attributes a complete record carries.
// Metrics derivation scores completeness against this list.
var ExpectedAttributes = []string{
	"formula",
	"crystal_system",
	"color",
	"streak",
	"luster",
}

// Mineral is the canonical in-memory record for one mineral. It is owned
// by the folder-backed store and never mutated by the report pipeline.
type Mineral struct {
	Slug       string `json:"slug"`        // Stable identifier, equals FolderName
	FolderName string `json:"folder_name"` // mineral.<family>.0x<hexid>
	Family     string `json:"family"`      // Family tag from the folder name
	HexID      string `json:"hex_id"`      // Short hex id from the folder name

	Name        LocalizedText `json:"name"`        // Localized common name, "en" always present
	Description LocalizedText `json:"description"` // Localized description
	Notes       LocalizedText `json:"notes"`       // Localized free-form notes

	Attributes   map[string]AttributeValue `json:"attributes"`              // Technical attributes keyed by name
	HardnessMohs *float64                  `json:"hardness_mohs,omitempty"` // Mohs hardness when measured
	DensityGCm3  *float64                  `json:"density_g_cm3,omitempty"` // Density in g/cm3 when measured

	MajorElementsPct map[string]float64 `json:"major_elements_pct,omitempty"` // Element symbol -> weight percent

	ImagePath string `json:"image_path,omitempty"` // Served path to the mineral image, if any
}

// Attribute returns the named technical attribute and whether it is present
// with a non-zero value.
func (m *Mineral) Attribute(name string) (AttributeValue, bool) {
	v, ok := m.Attributes[name]
	if !ok || v.IsZero() {
		return AttributeValue{}, false
	}
	return v, true
}

// ElementShares returns the major elements sorted by descending percent,
// ties broken by symbol so the order is stable across calls.
func (m *Mineral) ElementShares() []ElementShare {
	shares := make([]ElementShare, 0, len(m.MajorElementsPct))
	for name, pct := range m.MajorElementsPct {
		shares = append(shares, ElementShare{Name: name, Percent: pct})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percent != shares[j].Percent {
			return shares[i].Percent > shares[j].Percent
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

// ElementShare is one element's contribution to the mineral's chemistry.
type ElementShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}
