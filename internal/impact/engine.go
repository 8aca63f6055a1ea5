// Package impact estimates earthquake fatalities and displaced people from
// co-registered shaking intensity and population grids.
//
// Run bins every cell into an intensity band, applies the band's fatality
// and displacement rates to the cell's population, aggregates per-band and
// headline figures, and builds the legend of the resulting displaced
// population grid. It reads no files and keeps no state between calls.
package impact

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/report"
)

// ErrShapeMismatch is returned when the intensity and population grids differ
// in shape.
var ErrShapeMismatch = grid.ErrShapeMismatch

// Input holds the layers of one assessment.
type Input struct {
	// Intensity holds MMI shaking per cell.
	Intensity *grid.Grid

	// Population holds people per cell, already scaled to the working
	// resolution.
	Population *grid.Grid

	// GeoReference of the population grid, returned unchanged with the result.
	GeoReference grid.GeoReference

	// HazardName and ExposureName are used to phrase the report question.
	HazardName   string
	ExposureName string
}

// Run executes the impact model on in with parameters p.
func Run(in Input, p Params) (*Result, error) {
	if in.Intensity == nil || in.Population == nil {
		return nil, fmt.Errorf("%w: intensity and population grids are required", ErrInvalidParams)
	}
	if err := grid.CheckShape(in.Intensity, in.Population); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		var missing *MissingRateError
		if errors.As(err, &missing) {
			missing.Cells, missing.Population = bandMembers(in, p, missing.Band)
		}
		return nil, err
	}
	f, err := report.NewFormatter(p.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	bands := assignBands(in.Intensity, p)
	displaced, stats := overlay(in.Population, bands, p)
	threshold(displaced, p.Tolerance)

	r, err := grid.Wrap(in.Population.Rows(), in.Population.Cols(), displaced)
	if err != nil {
		return nil, err
	}

	totals := Aggregate(in.Population, stats, p)

	class, err := Classify(r, p.LegacyNaNSentinel, f.Int)
	switch {
	case errors.Is(err, ErrNoValidRange):
		class = Classification{}
	case err != nil:
		return nil, err
	}

	res := assemble(in, r, stats, totals, class, p, f)
	if res.NoDisplacement {
		slog.Warn("no displaced population above tolerance", "tolerance", p.Tolerance, "cells", r.Len())
	}
	slog.Debug("impact computed", "population", totals.Population,
		"fatalities", totals.Fatalities, "displaced", totals.Displaced)
	return res, nil
}

// bandMembers counts the cells of band and the population living in them.
func bandMembers(in Input, p Params, band int) (cells int, population float64) {
	for i := 0; i < in.Intensity.Len(); i++ {
		if bandOf(in.Intensity.Cell(i), p.MinBand, p.MaxBand, p.Step) != band {
			continue
		}
		cells++
		if v := in.Population.Cell(i); !math.IsNaN(v) {
			population += v
		}
	}
	return cells, population
}
