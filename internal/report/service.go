package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/pkg/types"
)

// Analyzer derives the analysis for one report request.
type Analyzer interface {
	Analyze(mineral *types.Mineral, request types.ReportRequest) types.Analysis
}

// DocumentBuilder runs the external typesetting step. Satisfied by *Builder;
// an interface so tests can stub the toolchain.
type DocumentBuilder interface {
	Build(ctx context.Context, folder, typesetDoc string) (string, error)
}

// Service is the composition root of the report pipeline. It sequences
// analysis, rendering, markup persistence, and the external build for one
// request, holding the mineral folder's lock across all side effects.
type Service struct {
	analyzer     Analyzer
	renderer     *Renderer
	builder      DocumentBuilder
	mineralsRoot string
	locks        *folderLocks
}

// NewService creates a report service. mineralsRoot is the directory that
// contains the per-mineral folders.
func NewService(analyzer Analyzer, renderer *Renderer, builder DocumentBuilder, mineralsRoot string) *Service {
	return &Service{
		analyzer:     analyzer,
		renderer:     renderer,
		builder:      builder,
		mineralsRoot: mineralsRoot,
		locks:        newFolderLocks(),
	}
}

// Generate runs the full pipeline for one mineral and returns the two
// artifact paths plus the summary, or a *Error tagged with the failing
// stage. No stage is retried and a failed build leaves the written files in
// place for inspection.
func (s *Service) Generate(ctx context.Context, mineral *types.Mineral, request types.ReportRequest, lang i18n.Language) (*types.ReportArtifacts, error) {
	folder := filepath.Join(s.mineralsRoot, mineral.FolderName)

	release := s.locks.acquire(folder)
	defer release()

	started := time.Now()
	analysis := s.analyzer.Analyze(mineral, request)

	markupDoc, typesetDoc, err := s.renderer.Render(mineral, request, analysis, lang)
	if err != nil {
		return nil, &Error{Stage: StageRender, Err: err}
	}

	markupPath := filepath.Join(folder, MarkupFileName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, &Error{Stage: StagePersist, Err: &PersistError{Path: folder, Err: err}}
	}
	if err := writeFile(markupPath, markupDoc); err != nil {
		// Fail fast: no typesetting attempt without its markup counterpart.
		return nil, &Error{Stage: StagePersist, Err: &PersistError{Path: markupPath, Err: err}}
	}

	artifactPath, err := s.builder.Build(ctx, folder, typesetDoc)
	if err != nil {
		var timeoutErr *BuildTimeoutError
		if errors.As(err, &timeoutErr) {
			return nil, &Error{Stage: StageBuildTimeout, Err: err}
		}
		return nil, &Error{Stage: StageBuild, Err: err}
	}

	log.Info().
		Str("mineral", mineral.Slug).
		Dur("elapsed", time.Since(started)).
		Msg("report generated")

	return &types.ReportArtifacts{
		MarkupPath:   markupPath,
		ArtifactPath: artifactPath,
		Summary:      analysis.Summary,
	}, nil
}
