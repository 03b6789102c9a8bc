// Package analysis derives metrics, a narrative summary, and ordered
// recommendations from a mineral record. The chain is pure computation:
// deterministic, side-effect free, and total over any well-formed record.
package analysis

import (
	"fmt"
	"strings"

	"github.com/petralab/lithograph/pkg/types"
)

// Hardness bands (Mohs scale thresholds 3.0 / 6.0 / 7.5).
const (
	BandSoft     = "soft"
	BandMedium   = "medium"
	BandHard     = "hard"
	BandVeryHard = "very hard"
)

// Density bands (g/cm3 thresholds 2.6 / 3.2).
const (
	BandLight    = "light"
	BandModerate = "moderate"
	BandDense    = "dense"
)

// Chain runs the metrics -> summary -> recommendations derivation. The rule
// table and recommendation cap are fixed at construction so identical inputs
// always produce identical output.
type Chain struct {
	rules              []Rule
	maxRecommendations int
}

// NewChain creates an analysis chain. A nil rules slice selects the built-in
// rule table; a non-positive cap falls back to 5.
func NewChain(rules []Rule, maxRecommendations int) *Chain {
	if rules == nil {
		rules = DefaultRules()
	}
	if maxRecommendations <= 0 {
		maxRecommendations = 5
	}
	return &Chain{rules: rules, maxRecommendations: maxRecommendations}
}

// Analyze derives the full analysis for one report request. Empty audience
// and purpose are replaced with generic defaults; a record missing every
// technical field yields all-absent metrics and a generic summary, never an
// error.
func (c *Chain) Analyze(mineral *types.Mineral, request types.ReportRequest) types.Analysis {
	request.ApplyDefaults()

	metrics := deriveMetrics(mineral)
	summary := composeSummary(mineral, request, metrics)
	recommendations := c.recommend(mineral, request, metrics)

	return types.Analysis{
		Metrics:         metrics,
		Summary:         summary,
		Recommendations: recommendations,
	}
}

// deriveMetrics is a pure function of the record's technical fields.
func deriveMetrics(mineral *types.Mineral) types.Metrics {
	m := types.Metrics{}

	for _, name := range types.ExpectedAttributes {
		if _, ok := mineral.Attribute(name); ok {
			m.PresentAttributes = append(m.PresentAttributes, name)
		} else {
			m.MissingAttributes = append(m.MissingAttributes, name)
		}
	}
	m.Completeness = float64(len(m.PresentAttributes)) / float64(len(types.ExpectedAttributes))

	if mineral.HardnessMohs != nil {
		m.HasHardness = true
		m.HardnessBand = hardnessBand(*mineral.HardnessMohs)
	}
	if mineral.DensityGCm3 != nil {
		m.HasDensity = true
		m.DensityBand = densityBand(*mineral.DensityGCm3)
	}

	m.ElementBreakdown = mineral.ElementShares()
	if len(m.ElementBreakdown) > 0 {
		m.HasElements = true
		m.DominantElement = m.ElementBreakdown[0].Name
		m.DominantElementPct = m.ElementBreakdown[0].Percent
	}

	return m
}

func hardnessBand(mohs float64) string {
	switch {
	case mohs < 3.0:
		return BandSoft
	case mohs < 6.0:
		return BandMedium
	case mohs < 7.5:
		return BandHard
	default:
		return BandVeryHard
	}
}

func densityBand(gcm3 float64) string {
	switch {
	case gcm3 < 2.6:
		return BandLight
	case gcm3 < 3.2:
		return BandModerate
	default:
		return BandDense
	}
}

// composeSummary builds the narrative. It always contains the audience and
// purpose verbatim and, when any metric was derived, names at least one
// metric.
func composeSummary(mineral *types.Mineral, request types.ReportRequest, metrics types.Metrics) string {
	name := mineral.Name.Resolve(types.EnglishLang)
	if name == "" {
		name = mineral.Slug
	}

	var b strings.Builder
	fmt.Fprintf(&b, "For %s", request.Audience)
	if request.SiteContext != "" {
		fmt.Fprintf(&b, " working in the %s context", request.SiteContext)
	}

	if metrics.Empty() {
		fmt.Fprintf(&b, ", %s has no recorded technical measurements yet; this overview supports %s at a descriptive level.", name, request.Purpose)
		return b.String()
	}

	fmt.Fprintf(&b, ", %s records %.0f%% attribute completeness", name, metrics.Completeness*100)
	if metrics.HasHardness {
		fmt.Fprintf(&b, " and classifies as %s on the hardness scale", metrics.HardnessBand)
	}
	if metrics.HasDensity {
		fmt.Fprintf(&b, " with %s density behavior", metrics.DensityBand)
	}
	b.WriteString(".")
	if metrics.HasElements {
		fmt.Fprintf(&b, " The chemistry is led by %s (%.1f wt%%).", metrics.DominantElement, metrics.DominantElementPct)
	}
	fmt.Fprintf(&b, " These observations support %s decisions.", request.Purpose)

	return b.String()
}

// recommend evaluates the rule table in declaration order and returns the
// first matches up to the configured cap.
func (c *Chain) recommend(mineral *types.Mineral, request types.ReportRequest, metrics types.Metrics) []string {
	recs := make([]string, 0, c.maxRecommendations)
	for _, rule := range c.rules {
		if len(recs) == c.maxRecommendations {
			break
		}
		if !rule.matches(metrics) {
			continue
		}
		recs = append(recs, rule.render(mineral, request, metrics))
	}
	return recs
}
