// Package i18n provides the catalog language set and the localized labels
// used by the rendered report documents.
package i18n

import "strings"

// Language is a supported catalog language.
type Language string

const (
	English Language = "en"
	German  Language = "de"
	Spanish Language = "es"
)

// All returns the supported languages in display order.
func All() []Language {
	return []Language{English, German, Spanish}
}

// Code returns the language's ISO code.
func (l Language) Code() string { return string(l) }

// Name returns the language's English display name.
func (l Language) Name() string {
	switch l {
	case German:
		return "German"
	case Spanish:
		return "Spanish"
	default:
		return "English"
	}
}

// FromCode parses a language code (optionally with a region suffix, e.g.
// "de-AT"). The second return value is false for unsupported codes.
func FromCode(value string) (Language, bool) {
	code, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "-")
	switch code {
	case "en":
		return English, true
	case "de":
		return German, true
	case "es":
		return Spanish, true
	default:
		return "", false
	}
}

// Labels holds the localized strings interpolated into report documents.
type Labels struct {
	ReportTitle     string
	Family          string
	Formula         string
	Hardness        string
	Density         string
	CrystalSystem   string
	Color           string
	Streak          string
	Luster          string
	Notes           string
	HardnessBand    string
	DensityBand     string
	DominantElement string
	Audience        string
	Purpose         string
	SiteContext     string
	Generated       string
	WeightPct       string
	Profile         string
	Composition     string
	Summary         string
	Recommendations string
}

var labelsByLanguage = map[Language]Labels{
	English: {
		ReportTitle:     "Mineral Report",
		Family:          "Family",
		Formula:         "Formula",
		Hardness:        "Hardness (Mohs)",
		Density:         "Density (g/cm3)",
		CrystalSystem:   "Crystal system",
		Color:           "Color",
		Streak:          "Streak",
		Luster:          "Luster",
		Notes:           "Notes",
		HardnessBand:    "Hardness class",
		DensityBand:     "Density class",
		DominantElement: "Dominant element",
		Audience:        "Audience",
		Purpose:         "Purpose",
		SiteContext:     "Site context",
		Generated:       "Generated",
		WeightPct:       "wt%",
		Profile:         "Mineral profile",
		Composition:     "Major composition",
		Summary:         "Summary",
		Recommendations: "Recommendations",
	},
	German: {
		ReportTitle:     "Mineralbericht",
		Family:          "Familie",
		Formula:         "Formel",
		Hardness:        "Härte (Mohs)",
		Density:         "Dichte (g/cm3)",
		CrystalSystem:   "Kristallsystem",
		Color:           "Farbe",
		Streak:          "Strich",
		Luster:          "Glanz",
		Notes:           "Anmerkungen",
		HardnessBand:    "Härteklasse",
		DensityBand:     "Dichteklasse",
		DominantElement: "Dominantes Element",
		Audience:        "Zielgruppe",
		Purpose:         "Zweck",
		SiteContext:     "Standortkontext",
		Generated:       "Erstellt",
		WeightPct:       "Gew.-%",
		Profile:         "Mineralprofil",
		Composition:     "Hauptzusammensetzung",
		Summary:         "Zusammenfassung",
		Recommendations: "Empfehlungen",
	},
	Spanish: {
		ReportTitle:     "Informe mineral",
		Family:          "Familia",
		Formula:         "Fórmula",
		Hardness:        "Dureza (Mohs)",
		Density:         "Densidad (g/cm3)",
		CrystalSystem:   "Sistema cristalino",
		Color:           "Color",
		Streak:          "Raya",
		Luster:          "Brillo",
		Notes:           "Notas",
		HardnessBand:    "Clase de dureza",
		DensityBand:     "Clase de densidad",
		DominantElement: "Elemento dominante",
		Audience:        "Audiencia",
		Purpose:         "Propósito",
		SiteContext:     "Contexto del sitio",
		Generated:       "Generado",
		WeightPct:       "% en peso",
		Profile:         "Perfil del mineral",
		Composition:     "Composición principal",
		Summary:         "Resumen",
		Recommendations: "Recomendaciones",
	},
}

// LabelsFor returns the labels for lang, defaulting to English for
// unsupported values.
func LabelsFor(lang Language) Labels {
	if l, ok := labelsByLanguage[lang]; ok {
		return l
	}
	return labelsByLanguage[English]
}
