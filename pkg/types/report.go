package types

// Default analysis context values applied when the caller leaves the
// corresponding request field empty.
const (
	DefaultAudience = "general audience"
	DefaultPurpose  = "general reference"
)

// ReportRequest is the request-scoped analysis context. All fields are
// optional; empty audience and purpose fall back to generic defaults
// instead of failing.
type ReportRequest struct {
	Audience    string `json:"audience"`
	Purpose     string `json:"purpose"`
	SiteContext string `json:"site_context"`
}

// ApplyDefaults fills empty audience and purpose with the generic defaults.
func (r *ReportRequest) ApplyDefaults() {
	if r.Audience == "" {
		r.Audience = DefaultAudience
	}
	if r.Purpose == "" {
		r.Purpose = DefaultPurpose
	}
}

// Metrics holds the quantitative and categorical facts derived from a
// mineral record. Immutable once computed.
type Metrics struct {
	Completeness       float64        `json:"completeness"`       // Populated expected attributes / expected (0..1)
	PresentAttributes  []string       `json:"present_attributes"` // Expected attributes that are populated
	MissingAttributes  []string       `json:"missing_attributes"` // Expected attributes that are absent
	HasHardness        bool           `json:"has_hardness"`
	HasDensity         bool           `json:"has_density"`
	HasElements        bool           `json:"has_elements"`
	HardnessBand       string         `json:"hardness_band,omitempty"` // soft / medium / hard / very hard
	DensityBand        string         `json:"density_band,omitempty"`  // light / moderate / dense
	DominantElement    string         `json:"dominant_element,omitempty"`
	DominantElementPct float64        `json:"dominant_element_pct,omitempty"`
	ElementBreakdown   []ElementShare `json:"element_breakdown,omitempty"` // Sorted by descending percent
}

// Empty reports whether no technical signal at all was derived.
func (m Metrics) Empty() bool {
	return len(m.PresentAttributes) == 0 && !m.HasHardness && !m.HasDensity && !m.HasElements
}

// Analysis is the full output of the analysis chain for one request.
type Analysis struct {
	Metrics         Metrics  `json:"metrics"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"` // Highest priority first, stable order
}

// ReportArtifacts is the externally visible result of one successful
// report-generation call: exactly the two produced paths plus the summary.
type ReportArtifacts struct {
	MarkupPath   string `json:"markup_path"`
	ArtifactPath string `json:"artifact_path"`
	Summary      string `json:"summary"`
}
