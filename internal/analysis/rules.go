package analysis

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petralab/lithograph/pkg/types"
)

// Rule maps a metric pattern to one recommendation. Rules are evaluated in
// declaration order; the order of the table is the priority order.
//
// Condition is one of a closed set of pattern names; unknown names never
// match. Message may contain the placeholders {name}, {dominant_element},
// {hardness_band}, {density_band}, {missing}, {audience}, and {purpose}.
type Rule struct {
	Condition string `yaml:"condition"`
	Message   string `yaml:"message"`
}

// Supported rule conditions.
const (
	CondAlways          = "always"
	CondHasElements     = "has_elements"
	CondMissingDensity  = "missing_density"
	CondMissingHardness = "missing_hardness"
	CondHard            = "hard"
	CondSoft            = "soft"
	CondDense           = "dense"
	CondNotDense        = "not_dense"
	CondIncomplete      = "incomplete"
)

func (r Rule) matches(m types.Metrics) bool {
	switch r.Condition {
	case CondAlways:
		return true
	case CondHasElements:
		return m.HasElements
	case CondMissingDensity:
		return !m.HasDensity
	case CondMissingHardness:
		return !m.HasHardness
	case CondHard:
		return m.HardnessBand == BandHard || m.HardnessBand == BandVeryHard
	case CondSoft:
		return m.HasHardness && (m.HardnessBand == BandSoft || m.HardnessBand == BandMedium)
	case CondDense:
		return m.DensityBand == BandDense
	case CondNotDense:
		return m.HasDensity && m.DensityBand != BandDense
	case CondIncomplete:
		return m.Completeness < 1
	default:
		// Unknown condition names never fire.
		return false
	}
}

func (r Rule) render(mineral *types.Mineral, request types.ReportRequest, m types.Metrics) string {
	name := mineral.Name.Resolve(types.EnglishLang)
	if name == "" {
		name = mineral.Slug
	}
	return strings.NewReplacer(
		"{name}", name,
		"{dominant_element}", m.DominantElement,
		"{hardness_band}", m.HardnessBand,
		"{density_band}", m.DensityBand,
		"{missing}", strings.Join(m.MissingAttributes, ", "),
		"{audience}", request.Audience,
		"{purpose}", request.Purpose,
	).Replace(r.Message)
}

// DefaultRules returns the built-in recommendation table, highest priority
// first.
func DefaultRules() []Rule {
	return []Rule{
		{CondHasElements, "Prioritize samples of {name} where {dominant_element} enrichment is strongest."},
		{CondMissingDensity, "Obtain a density measurement before any volumetric estimates."},
		{CondMissingHardness, "Schedule Mohs hardness testing to support processing design."},
		{CondHard, "Use abrasion-resistant tooling and adjust comminution energy estimates upward."},
		{CondSoft, "Validate breakage and weathering rates early, as softer material can bias grade control."},
		{CondDense, "Run density separation testwork to confirm recovery uplift potential."},
		{CondNotDense, "Combine XRD with geochemistry to avoid over-reliance on density-based separation."},
		{CondIncomplete, "Complete the missing attributes ({missing}) to raise record completeness."},
		{CondAlways, "Archive this report against '{purpose}' objectives for reproducible decision records."},
	}
}

// LoadRules reads a rule table from a YAML file of the form:
//
//	rules:
//	  - condition: missing_density
//	    message: Obtain a density measurement.
//
// Returns an error for unreadable files, invalid YAML, or an empty table.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: failed to read %s: %w", path, err)
	}

	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rules: failed to parse %s: %w", path, err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rules: %s defines no rules", path)
	}

	for i, rule := range doc.Rules {
		if rule.Message == "" {
			return nil, fmt.Errorf("rules: rule %d in %s has an empty message", i, path)
		}
	}

	return doc.Rules, nil
}
