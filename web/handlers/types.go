package handlers

import (
	"sort"

	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MineralSummary is the list-view shape of a mineral.
type MineralSummary struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Family    string `json:"family"`
	ImagePath string `json:"image_path,omitempty"`
}

// MineralResponse is the detail-view shape of a mineral, localized to the
// request language.
type MineralResponse struct {
	Slug             string              `json:"slug"`
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	Family           string              `json:"family"`
	Attributes       []AttributeResponse `json:"attributes"`
	HardnessMohs     *float64            `json:"hardness_mohs,omitempty"`
	DensityGCm3      *float64            `json:"density_g_cm3,omitempty"`
	MajorElementsPct map[string]float64  `json:"major_elements_pct,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	ImagePath        string              `json:"image_path,omitempty"`
}

// AttributeResponse is one technical attribute with its typed value.
type AttributeResponse struct {
	Name  string               `json:"name"`
	Value types.AttributeValue `json:"value"`
}

// toSummary localizes a mineral to the list-view shape.
func toSummary(m *types.Mineral, lang i18n.Language) MineralSummary {
	return MineralSummary{
		Slug:      m.Slug,
		Name:      m.Name.Resolve(lang.Code()),
		Family:    m.Family,
		ImagePath: m.ImagePath,
	}
}

// toResponse localizes a mineral to the detail-view shape. Attributes are
// sorted by name for a stable payload.
func toResponse(m *types.Mineral, lang i18n.Language) MineralResponse {
	attrs := make([]AttributeResponse, 0, len(m.Attributes))
	for name, value := range m.Attributes {
		attrs = append(attrs, AttributeResponse{Name: name, Value: value})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })

	return MineralResponse{
		Slug:             m.Slug,
		Name:             m.Name.Resolve(lang.Code()),
		Description:      m.Description.Resolve(lang.Code()),
		Family:           m.Family,
		Attributes:       attrs,
		HardnessMohs:     m.HardnessMohs,
		DensityGCm3:      m.DensityGCm3,
		MajorElementsPct: m.MajorElementsPct,
		Notes:            m.Notes.Resolve(lang.Code()),
		ImagePath:        m.ImagePath,
	}
}
