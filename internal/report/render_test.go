package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/pkg/types"
)

func measure(v float64) *float64 { return &v }

func fixtureMineral() *types.Mineral {
	return &types.Mineral{
		Slug:       "mineral.silicate.0xaaaaaa",
		FolderName: "mineral.silicate.0xaaaaaa",
		Family:     "silicate",
		Name:       types.LocalizedText{"en": "Quartz", "de": "Quarz"},
		Description: types.LocalizedText{
			"en": "A common framework silicate, 50% of many sands & gravels.",
		},
		Attributes: map[string]types.AttributeValue{
			"formula":        types.TextAttribute("SiO2"),
			"crystal_system": types.TextAttribute("trigonal"),
			"color":          types.TextAttribute("colorless"),
			"streak":         types.TextAttribute("white"),
			"luster":         types.TextAttribute("vitreous"),
		},
		HardnessMohs:     measure(7.0),
		DensityGCm3:      measure(2.65),
		MajorElementsPct: map[string]float64{"Si": 46.7, "O": 53.3},
		ImagePath:        "/data/minerals/mineral.silicate.0xaaaaaa/specimen.jpg",
	}
}

func fixtureAnalysis() types.Analysis {
	return types.Analysis{
		Metrics: types.Metrics{
			Completeness:       1.0,
			PresentAttributes:  types.ExpectedAttributes,
			HasHardness:        true,
			HasDensity:         true,
			HasElements:        true,
			HardnessBand:       "hard",
			DensityBand:        "moderate",
			DominantElement:    "O",
			DominantElementPct: 53.3,
			ElementBreakdown: []types.ElementShare{
				{Name: "O", Percent: 53.3},
				{Name: "Si", Percent: 46.7},
			},
		},
		Summary:         "Quartz is hard with moderate density, 100% complete & led by O.",
		Recommendations: []string{"Prioritize O-rich samples.", "Archive against 'testing' objectives."},
	}
}

func fixedRenderer() *Renderer {
	r := NewRenderer()
	r.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	return r
}

func TestRenderProducesBothDocuments(t *testing.T) {
	r := fixedRenderer()

	markup, typeset, err := r.Render(fixtureMineral(), types.ReportRequest{}, fixtureAnalysis(), i18n.English)
	require.NoError(t, err)

	assert.Contains(t, markup, "<h1>Mineral Report: Quartz</h1>")
	assert.Contains(t, markup, "2026-03-14T09:26:53Z")
	assert.Contains(t, markup, "SiO2")
	assert.Contains(t, markup, "specimen.jpg")
	assert.Contains(t, markup, "<li>Prioritize O-rich samples.</li>")

	assert.Contains(t, typeset, `\documentclass`)
	assert.Contains(t, typeset, `\textbf{Mineral Report: Quartz}`)
	assert.Contains(t, typeset, `\item Prioritize O-rich samples.`)
	assert.Contains(t, typeset, `\includegraphics[width=0.45\textwidth]{specimen.jpg}`)
	assert.Contains(t, typeset, `\end{document}`)
}

func TestRenderEscapesLatexControls(t *testing.T) {
	r := fixedRenderer()

	_, typeset, err := r.Render(fixtureMineral(), types.ReportRequest{}, fixtureAnalysis(), i18n.English)
	require.NoError(t, err)

	// Free text with % and & must arrive escaped in the typeset source.
	assert.Contains(t, typeset, `50\% of many sands \& gravels`)
	assert.Contains(t, typeset, `100\% complete \& led by O`)
	assert.NotContains(t, typeset, "50% of many sands")
}

func TestRenderEscapesMarkup(t *testing.T) {
	r := fixedRenderer()
	mineral := fixtureMineral()
	mineral.Description = types.LocalizedText{"en": `<script>alert("x")</script>`}

	markup, _, err := r.Render(mineral, types.ReportRequest{}, fixtureAnalysis(), i18n.English)
	require.NoError(t, err)

	assert.NotContains(t, markup, "<script>")
	assert.Contains(t, markup, "&lt;script&gt;")
}

func TestRenderContextFieldsVerbatim(t *testing.T) {
	r := fixedRenderer()
	req := types.ReportRequest{Audience: "resource geologist", Purpose: "mine planning", SiteContext: "pit 4"}

	markup, typeset, err := r.Render(fixtureMineral(), req, fixtureAnalysis(), i18n.English)
	require.NoError(t, err)

	for _, doc := range []string{markup, typeset} {
		assert.Contains(t, doc, "resource geologist")
		assert.Contains(t, doc, "mine planning")
		assert.Contains(t, doc, "pit 4")
	}
}

func TestRenderLocalizedLabels(t *testing.T) {
	r := fixedRenderer()

	markup, typeset, err := r.Render(fixtureMineral(), types.ReportRequest{}, fixtureAnalysis(), i18n.German)
	require.NoError(t, err)

	assert.Contains(t, markup, "Mineralbericht: Quarz")
	assert.Contains(t, markup, `lang="de"`)
	assert.Contains(t, typeset, "Mineralbericht")
}

func TestRenderEscapesLocalizedLabels(t *testing.T) {
	r := fixedRenderer()

	// The weight-percent column header carries a literal % in every
	// language. Unescaped it would comment out the rest of the table row.
	for _, lang := range []i18n.Language{i18n.English, i18n.German, i18n.Spanish} {
		markup, typeset, err := r.Render(fixtureMineral(), types.ReportRequest{}, fixtureAnalysis(), lang)
		require.NoError(t, err)

		labels := i18n.LabelsFor(lang)
		assert.Contains(t, markup, labels.WeightPct, "lang %s", lang)
		assert.Contains(t, typeset, latexEscape(labels.WeightPct), "lang %s", lang)

		for _, line := range strings.Split(typeset, "\n") {
			for i := 0; i < len(line); i++ {
				if line[i] == '%' && (i == 0 || line[i-1] != '\\') {
					t.Errorf("lang %s: unescaped %% in typeset line: %q", lang, line)
				}
			}
		}
	}
}

func TestRenderMissingNameFailsAtomically(t *testing.T) {
	r := fixedRenderer()
	mineral := fixtureMineral()
	mineral.Name = types.LocalizedText{}

	markup, typeset, err := r.Render(mineral, types.ReportRequest{}, fixtureAnalysis(), i18n.English)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "name", renderErr.Field)
	assert.Empty(t, markup, "neither document is produced on failure")
	assert.Empty(t, typeset)
}

func TestRenderEmptyRecommendationFails(t *testing.T) {
	r := fixedRenderer()
	analysis := fixtureAnalysis()
	analysis.Recommendations = []string{"valid", ""}

	_, _, err := r.Render(fixtureMineral(), types.ReportRequest{}, analysis, i18n.English)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "recommendations", renderErr.Field)
}

func TestRenderEmptySummaryFails(t *testing.T) {
	r := fixedRenderer()
	analysis := fixtureAnalysis()
	analysis.Summary = ""

	_, _, err := r.Render(fixtureMineral(), types.ReportRequest{}, analysis, i18n.English)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "summary", renderErr.Field)
}

func TestRenderSparseRecordOmitsSections(t *testing.T) {
	r := fixedRenderer()
	mineral := &types.Mineral{
		Slug:       "mineral.unknown.0x000001",
		FolderName: "mineral.unknown.0x000001",
		Family:     "unknown",
		Name:       types.LocalizedText{"en": "Mysteryite"},
	}
	analysis := types.Analysis{
		Summary:         "Nothing is measured yet.",
		Recommendations: []string{"Measure something."},
	}

	markup, typeset, err := r.Render(mineral, types.ReportRequest{}, analysis, i18n.English)
	require.NoError(t, err)

	assert.NotContains(t, markup, "Major composition")
	assert.NotContains(t, markup, "specimen")
	assert.False(t, strings.Contains(typeset, `\includegraphics`))
	assert.Contains(t, typeset, "Nothing is measured yet.")
}
