// Package report implements the per-mineral report generation pipeline:
// document rendering, external typesetting orchestration, and the service
// that sequences them under per-folder mutual exclusion.
package report

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"path"
	"strconv"
	texttemplate "text/template"
	"time"

	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/pkg/types"
)

//go:embed templates/report.html.tmpl templates/report.tex.tmpl
var templateFS embed.FS

// Renderer fills the markup (HTML) and typesetting (LaTeX) report templates
// from one input tuple. Rendering is pure string production: both documents
// are produced or neither is, and nothing touches the filesystem here.
type Renderer struct {
	html *htmltemplate.Template
	tex  *texttemplate.Template
	now  func() time.Time
}

// NewRenderer parses the embedded templates. The templates ship with the
// binary, so a parse failure is a programming error and panics at startup.
func NewRenderer() *Renderer {
	return &Renderer{
		html: htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/report.html.tmpl")),
		tex:  texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/report.tex.tmpl")),
		now:  time.Now,
	}
}

// documentView is the flattened, display-ready input for both templates.
// For the typesetting template every free-text field is LaTeX-escaped
// before execution; the HTML template relies on html/template escaping.
type documentView struct {
	Labels   i18n.Labels
	LangCode string

	GeneratedUTC string

	Name        string
	Family      string
	Description string
	Notes       string

	Formula       string
	CrystalSystem string
	Color         string
	Streak        string
	Luster        string

	HardnessMohs string
	DensityGCm3  string
	HardnessBand string
	DensityBand  string

	DominantElement    string
	DominantElementPct string
	Elements           []elementView

	Audience    string
	Purpose     string
	SiteContext string
	Summary     string

	Recommendations []string

	ImagePath string // Served path, markup document only
	ImageFile string // Bare filename inside the mineral folder, typeset document only
}

type elementView struct {
	Name    string
	Percent string
}

// Render produces the markup document and the typesetting document for one
// report. A validation or template-fill failure returns a *RenderError and
// neither document.
func (r *Renderer) Render(mineral *types.Mineral, request types.ReportRequest, analysis types.Analysis, lang i18n.Language) (markupDoc, typesetDoc string, err error) {
	request.ApplyDefaults()

	view, err := r.buildView(mineral, request, analysis, lang)
	if err != nil {
		return "", "", err
	}

	var htmlBuf bytes.Buffer
	if execErr := r.html.Execute(&htmlBuf, view); execErr != nil {
		return "", "", &RenderError{Field: "markup document", Err: execErr}
	}

	texView := view
	escapeForLatex(&texView)
	var texBuf bytes.Buffer
	if execErr := r.tex.Execute(&texBuf, texView); execErr != nil {
		return "", "", &RenderError{Field: "typesetting document", Err: execErr}
	}

	return htmlBuf.String(), texBuf.String(), nil
}

// buildView validates the input tuple and flattens it for the templates.
func (r *Renderer) buildView(mineral *types.Mineral, request types.ReportRequest, analysis types.Analysis, lang i18n.Language) (documentView, error) {
	name := mineral.Name.Resolve(lang.Code())
	if name == "" {
		return documentView{}, &RenderError{Field: "name", Err: fmt.Errorf("mineral %s has no English name", mineral.Slug)}
	}
	if analysis.Summary == "" {
		return documentView{}, &RenderError{Field: "summary", Err: fmt.Errorf("analysis produced an empty summary")}
	}
	for i, rec := range analysis.Recommendations {
		if rec == "" {
			return documentView{}, &RenderError{Field: "recommendations", Err: fmt.Errorf("recommendation %d is empty", i)}
		}
	}

	view := documentView{
		Labels:          i18n.LabelsFor(lang),
		LangCode:        lang.Code(),
		GeneratedUTC:    r.now().UTC().Format(time.RFC3339),
		Name:            name,
		Family:          mineral.Family,
		Description:     mineral.Description.Resolve(lang.Code()),
		Notes:           mineral.Notes.Resolve(lang.Code()),
		HardnessBand:    analysis.Metrics.HardnessBand,
		DensityBand:     analysis.Metrics.DensityBand,
		Audience:        request.Audience,
		Purpose:         request.Purpose,
		SiteContext:     request.SiteContext,
		Summary:         analysis.Summary,
		Recommendations: analysis.Recommendations,
	}

	if v, ok := mineral.Attribute("formula"); ok {
		view.Formula = v.String()
	}
	if v, ok := mineral.Attribute("crystal_system"); ok {
		view.CrystalSystem = v.String()
	}
	if v, ok := mineral.Attribute("color"); ok {
		view.Color = v.String()
	}
	if v, ok := mineral.Attribute("streak"); ok {
		view.Streak = v.String()
	}
	if v, ok := mineral.Attribute("luster"); ok {
		view.Luster = v.String()
	}

	if mineral.HardnessMohs != nil {
		view.HardnessMohs = formatMeasure(*mineral.HardnessMohs)
	}
	if mineral.DensityGCm3 != nil {
		view.DensityGCm3 = formatMeasure(*mineral.DensityGCm3)
	}

	if analysis.Metrics.HasElements {
		view.DominantElement = analysis.Metrics.DominantElement
		view.DominantElementPct = strconv.FormatFloat(analysis.Metrics.DominantElementPct, 'f', 1, 64)
		for _, share := range analysis.Metrics.ElementBreakdown {
			view.Elements = append(view.Elements, elementView{
				Name:    share.Name,
				Percent: strconv.FormatFloat(share.Percent, 'f', 2, 64),
			})
		}
	}

	if mineral.ImagePath != "" {
		view.ImagePath = mineral.ImagePath
		view.ImageFile = path.Base(mineral.ImagePath)
	}

	return view, nil
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// escapeForLatex escapes every interpolated free-text field of the view in
// place. Slices are copied first so the markup view keeps the raw values.
func escapeForLatex(v *documentView) {
	v.Labels = escapeLabels(v.Labels)
	v.Name = latexEscape(v.Name)
	v.Family = latexEscape(v.Family)
	v.Description = latexEscape(v.Description)
	v.Notes = latexEscape(v.Notes)
	v.Formula = latexEscape(v.Formula)
	v.CrystalSystem = latexEscape(v.CrystalSystem)
	v.Color = latexEscape(v.Color)
	v.Streak = latexEscape(v.Streak)
	v.Luster = latexEscape(v.Luster)
	v.HardnessBand = latexEscape(v.HardnessBand)
	v.DensityBand = latexEscape(v.DensityBand)
	v.DominantElement = latexEscape(v.DominantElement)
	v.Audience = latexEscape(v.Audience)
	v.Purpose = latexEscape(v.Purpose)
	v.SiteContext = latexEscape(v.SiteContext)
	v.Summary = latexEscape(v.Summary)

	recs := make([]string, len(v.Recommendations))
	for i, rec := range v.Recommendations {
		recs[i] = latexEscape(rec)
	}
	v.Recommendations = recs

	elems := make([]elementView, len(v.Elements))
	for i, e := range v.Elements {
		elems[i] = elementView{Name: latexEscape(e.Name), Percent: e.Percent}
	}
	v.Elements = elems
}

// escapeLabels returns a copy of the localized labels with every string
// LaTeX-escaped. Labels like "% en peso" carry characters that are special
// in LaTeX, so they need the same treatment as the mineral's own text.
func escapeLabels(l i18n.Labels) i18n.Labels {
	l.ReportTitle = latexEscape(l.ReportTitle)
	l.Family = latexEscape(l.Family)
	l.Formula = latexEscape(l.Formula)
	l.Hardness = latexEscape(l.Hardness)
	l.Density = latexEscape(l.Density)
	l.CrystalSystem = latexEscape(l.CrystalSystem)
	l.Color = latexEscape(l.Color)
	l.Streak = latexEscape(l.Streak)
	l.Luster = latexEscape(l.Luster)
	l.Notes = latexEscape(l.Notes)
	l.HardnessBand = latexEscape(l.HardnessBand)
	l.DensityBand = latexEscape(l.DensityBand)
	l.DominantElement = latexEscape(l.DominantElement)
	l.Audience = latexEscape(l.Audience)
	l.Purpose = latexEscape(l.Purpose)
	l.SiteContext = latexEscape(l.SiteContext)
	l.Generated = latexEscape(l.Generated)
	l.WeightPct = latexEscape(l.WeightPct)
	l.Profile = latexEscape(l.Profile)
	l.Composition = latexEscape(l.Composition)
	l.Summary = latexEscape(l.Summary)
	l.Recommendations = latexEscape(l.Recommendations)
	return l
}
