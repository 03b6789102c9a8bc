// Package catalog implements the folder-backed mineral store: one folder
// per mineral under <data>/minerals, holding per-language JSON metadata,
// an optional specimen image, and the generated report files.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/petralab/lithograph/pkg/types"
)

// DiskRecord is the JSON shape of one mineral.<lang>.json metadata file.
type DiskRecord struct {
	CommonName       string                 `json:"common_name"`
	Description      string                 `json:"description,omitempty"`
	Family           string                 `json:"family"`
	Formula          string                 `json:"formula,omitempty"`
	HardnessMohs     *float64               `json:"hardness_mohs,omitempty"`
	DensityGCm3      *float64               `json:"density_g_cm3,omitempty"`
	CrystalSystem    string                 `json:"crystal_system,omitempty"`
	Color            string                 `json:"color,omitempty"`
	Streak           string                 `json:"streak,omitempty"`
	Luster           string                 `json:"luster,omitempty"`
	MajorElementsPct map[string]float64     `json:"major_elements_pct,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	ImageFile        string                 `json:"image_file,omitempty"`
	Extra            map[string]interface{} `json:"extra_attributes,omitempty"`
}

// attributes flattens the record's technical fields into the typed
// attribute mapping. Known fields become text attributes under their
// canonical names; open extra attributes keep their JSON-derived kinds.
func (r *DiskRecord) attributes() map[string]types.AttributeValue {
	attrs := make(map[string]types.AttributeValue)
	if r.Formula != "" {
		attrs["formula"] = types.TextAttribute(r.Formula)
	}
	if r.CrystalSystem != "" {
		attrs["crystal_system"] = types.TextAttribute(r.CrystalSystem)
	}
	if r.Color != "" {
		attrs["color"] = types.TextAttribute(r.Color)
	}
	if r.Streak != "" {
		attrs["streak"] = types.TextAttribute(r.Streak)
	}
	if r.Luster != "" {
		attrs["luster"] = types.TextAttribute(r.Luster)
	}
	for name, raw := range r.Extra {
		attrs[name] = types.AttributeFromAny(raw)
	}
	return attrs
}

// ParseMajorElements parses the admin form's line-oriented element input
// ("Si=46.7" or "Si: 46.7", one element per line).
func ParseMajorElements(raw string) (map[string]float64, error) {
	values := make(map[string]float64)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sep := "="
		if !strings.Contains(line, "=") {
			sep = ":"
		}
		key, value, found := strings.Cut(line, sep)
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("major element lines must be like 'Si=46.7', got %q", line)
		}
		var pct float64
		if _, err := fmt.Sscanf(value, "%g", &pct); err != nil {
			return nil, fmt.Errorf("invalid percentage for %q", key)
		}
		values[key] = pct
	}
	return values, nil
}

// MajorElementsToText renders an element map in the admin form's line
// format, sorted by symbol for a stable round trip.
func MajorElementsToText(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%.2f", k, values[k]))
	}
	return strings.Join(lines, "\n")
}
