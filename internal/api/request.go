package api

import (
	"fmt"
	"math"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/impact"
)

// maxRequestCells bounds the grid size accepted by POST /api/assessments.
const maxRequestCells = 1 << 20

var maxBodyBytes int64 = 64 << 20

// assessmentRequest is the body of POST /api/assessments. Grids are row-major
// with null for no-data cells.
type assessmentRequest struct {
	Label        string             `json:"label"`
	HazardName   string             `json:"hazard_name"`
	ExposureName string             `json:"exposure_name"`
	Rows         int                `json:"rows" binding:"required,min=1"`
	Cols         int                `json:"cols" binding:"required,min=1"`
	Hazard       []*float64         `json:"hazard" binding:"required"`
	Population   []*float64         `json:"population" binding:"required"`
	GeoReference *grid.GeoReference `json:"georef"`
	Model        *modelOverrides    `json:"model"`
}

// modelOverrides replaces individual engine parameters for one request.
type modelOverrides struct {
	X                 *float64        `json:"x"`
	Y                 *float64        `json:"y"`
	Tolerance         *float64        `json:"tolerance"`
	MinBand           *int            `json:"min_band"`
	MaxBand           *int            `json:"max_band"`
	Step              *float64        `json:"step"`
	IncludeDisplaced  *bool           `json:"include_displaced"`
	DisplacementRates map[int]float64 `json:"displacement_rates"`
	Rounding          *int64          `json:"rounding"`
	Locale            *string         `json:"locale"`
	LegacyNaNSentinel *bool           `json:"legacy_nan_sentinel"`
}

func (r *assessmentRequest) input() (impact.Input, error) {
	h, err := toGrid("hazard", r.Rows, r.Cols, r.Hazard)
	if err != nil {
		return impact.Input{}, err
	}
	p, err := toGrid("population", r.Rows, r.Cols, r.Population)
	if err != nil {
		return impact.Input{}, err
	}
	in := impact.Input{
		Intensity:    h,
		Population:   p,
		HazardName:   r.HazardName,
		ExposureName: r.ExposureName,
	}
	if r.GeoReference != nil {
		in.GeoReference = *r.GeoReference
	}
	return in, nil
}

func toGrid(name string, rows, cols int, cells []*float64) (*grid.Grid, error) {
	if err := grid.CheckSize(rows, cols); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", impact.ErrInvalidParams, name, err)
	}
	if rows > maxRequestCells/cols {
		return nil, fmt.Errorf("%w: %s has %dx%d cells, at most %d accepted", grid.ErrTooLarge, name, rows, cols, maxRequestCells)
	}
	if len(cells) != rows*cols {
		return nil, fmt.Errorf("%w: %s has %d cells, want %d", impact.ErrShapeMismatch, name, len(cells), rows*cols)
	}
	data := make([]float64, len(cells))
	for i, v := range cells {
		if v == nil {
			data[i] = math.NaN()
		} else {
			data[i] = *v
		}
	}
	return grid.Wrap(rows, cols, data)
}

// apply returns base with the overrides set.
func (m *modelOverrides) apply(base impact.Params) (impact.Params, error) {
	p := base
	if m == nil {
		return p, nil
	}
	if m.X != nil {
		p.Model.X, p.Model.Label = *m.X, "custom"
	}
	if m.Y != nil {
		p.Model.Y, p.Model.Label = *m.Y, "custom"
	}
	if m.Tolerance != nil {
		p.Tolerance = *m.Tolerance
	}
	if m.MinBand != nil {
		p.MinBand = *m.MinBand
	}
	if m.MaxBand != nil {
		p.MaxBand = *m.MaxBand
	}
	if m.Step != nil {
		p.Step = *m.Step
	}
	if m.IncludeDisplaced != nil {
		p.IncludeDisplaced = *m.IncludeDisplaced
	}
	if m.DisplacementRates != nil {
		rates, err := impact.NewRateTable(m.DisplacementRates)
		if err != nil {
			return impact.Params{}, err
		}
		p.DisplacementRates = rates
	}
	if m.Rounding != nil {
		p.Rounding = *m.Rounding
	}
	if m.Locale != nil {
		p.Locale = *m.Locale
	}
	if m.LegacyNaNSentinel != nil {
		p.LegacyNaNSentinel = *m.LegacyNaNSentinel
	}
	return p, nil
}

// gridRows converts g to nested rows with nil for no-data, so it can be
// encoded as JSON.
func gridRows(g *grid.Grid) [][]*float64 {
	if g == nil {
		return nil
	}
	out := make([][]*float64, g.Rows())
	for r := range out {
		out[r] = make([]*float64, g.Cols())
		for c := range out[r] {
			if v := g.At(r, c); !math.IsNaN(v) {
				out[r][c] = &v
			}
		}
	}
	return out
}
