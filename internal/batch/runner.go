package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/impact"
	"github.com/mr1hm/go-quake-impact/internal/models"
	"github.com/mr1hm/go-quake-impact/internal/repository"
)

// Runner executes scenarios and writes their outputs.
type Runner struct {
	params     impact.Params
	repo       repository.AssessmentRepository
	loader     *Loader
	reportDir  string
	onComplete func(a *models.Assessment)
}

// NewRunner returns a Runner writing outputs to reportDir. repo may be nil, in
// which case nothing is persisted.
func NewRunner(params impact.Params, repo repository.AssessmentRepository, reportDir string) *Runner {
	return &Runner{
		params:    params,
		repo:      repo,
		loader:    NewLoader(),
		reportDir: reportDir,
	}
}

// OnComplete sets a callback receiving every finished assessment, failed ones
// included. It must be called before the runner is used.
func (r *Runner) OnComplete(fn func(a *models.Assessment)) {
	r.onComplete = fn
}

// Outputs lists the files written for one scenario.
type Outputs struct {
	Grid     string
	Table    string
	Workbook string
}

// OutputPaths returns where the outputs of s are written.
func (r *Runner) OutputPaths(s Scenario) Outputs {
	base := filepath.Join(r.reportDir, s.Title())
	return Outputs{
		Grid:     base + ".asc",
		Table:    base + "_table.txt",
		Workbook: base + "_table.xlsx",
	}
}

// Run assesses s and stores the outcome under id. Failed runs are stored too.
func (r *Runner) Run(ctx context.Context, id string, s Scenario) (*impact.Result, error) {
	res, in, err := r.run(ctx, s)
	if err != nil {
		slog.Error("scenario failed", "label", s.Label, "source", s.Source, "error", err)
		r.store(ctx, models.FailedAssessment(id, s.Label, s.Source, s.Hazard, s.Exposure, err))
		return nil, err
	}

	r.store(ctx, models.NewAssessment(id, s.Label, s.Source, in, res, r.params.IncludeDisplaced))
	slog.Info("scenario complete", "label", s.Label, "id", id,
		"fatalities", res.Fatalities, "displaced", res.Displaced)
	return res, nil
}

func (r *Runner) run(ctx context.Context, s Scenario) (*impact.Result, impact.Input, error) {
	in := impact.Input{HazardName: s.Label, ExposureName: "people"}

	if err := s.Validate(); err != nil {
		return nil, in, err
	}
	if s.Aggregation != "" {
		slog.Warn("aggregation layers are not supported, ignoring", "label", s.Label, "aggregation", s.Aggregation)
	}

	hazard, hazardRef, err := r.loader.Load(ctx, s.HazardPath())
	if err != nil {
		return nil, in, fmt.Errorf("error loading hazard: %w", err)
	}
	exposure, ref, err := r.loader.Load(ctx, s.ExposurePath())
	if err != nil {
		return nil, in, fmt.Errorf("error loading exposure: %w", err)
	}

	if s.Extent != "" {
		e, err := grid.ParseExtent(s.Extent)
		if err != nil {
			return nil, in, err
		}
		if hazard, _, err = grid.Clip(hazard, hazardRef, e); err != nil {
			return nil, in, fmt.Errorf("error clipping hazard: %w", err)
		}
		if exposure, ref, err = grid.Clip(exposure, ref, e); err != nil {
			return nil, in, fmt.Errorf("error clipping exposure: %w", err)
		}
		slog.Debug("clipped layers to extent", "label", s.Label, "extent", s.Extent,
			"rows", exposure.Rows(), "cols", exposure.Cols())
	}

	in.Intensity, in.Population, in.GeoReference = hazard, exposure, ref
	res, err := impact.Run(in, r.params)
	if err != nil {
		return nil, in, err
	}

	if err := r.write(s, res); err != nil {
		return nil, in, err
	}
	return res, in, nil
}

func (r *Runner) write(s Scenario, res *impact.Result) error {
	if err := os.MkdirAll(r.reportDir, 0o755); err != nil {
		return fmt.Errorf("error creating report dir: %w", err)
	}

	out := r.OutputPaths(s)
	if err := grid.WriteASCFile(out.Grid, res.Grid, res.GeoReference); err != nil {
		return err
	}
	if err := os.WriteFile(out.Table, []byte(res.ImpactSummary), 0o644); err != nil {
		return fmt.Errorf("error writing impact table: %w", err)
	}
	if err := WriteWorkbook(out.Workbook, s, res); err != nil {
		return err
	}
	return nil
}

func (r *Runner) store(ctx context.Context, a *models.Assessment) {
	if r.repo != nil {
		if err := r.repo.Add(ctx, a); err != nil {
			slog.Error("error storing assessment", "id", a.ID, "error", err)
		}
	}
	if r.onComplete != nil {
		r.onComplete(a)
	}
}
