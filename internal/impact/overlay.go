package impact

import (
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-quake-impact/internal/grid"
)

// noBand marks a cell whose intensity falls in no configured band.
const noBand = -1

// BandStats holds the per-band aggregates. No-data cells contribute nothing.
type BandStats struct {
	Band       int     `json:"band"`
	Cells      int     `json:"cells"`
	Exposed    float64 `json:"exposed"`
	Fatalities float64 `json:"fatalities"`
	Displaced  float64 `json:"displaced"`
}

// bandOf returns the band mmi with mmi-step < h <= mmi+step, or noBand.
// With step <= 0.5 at most one band qualifies; its neighbours are checked as
// well so rounding in h-step cannot push a cell into the wrong band.
func bandOf(h float64, minBand, maxBand int, step float64) int {
	if math.IsNaN(h) {
		return noBand
	}
	guess := math.Ceil(h - step)
	for _, m := range [3]float64{guess - 1, guess, guess + 1} {
		if m < float64(minBand) || m > float64(maxBand) {
			continue
		}
		if h > m-step && h <= m+step {
			return int(m)
		}
	}
	return noBand
}

// assignBands returns the band of every cell of h.
func assignBands(h *grid.Grid, p Params) []int8 {
	bands := make([]int8, h.Len())
	for i := range bands {
		bands[i] = int8(bandOf(h.Cell(i), p.MinBand, p.MaxBand, p.Step))
	}
	return bands
}

// bandRates holds the per-band constants of one run.
type bandRates struct {
	fatality  float64
	displaced float64
}

// overlay applies the fatality and displacement rates of each cell's band to
// its population. It returns the displaced density of every cell, with cells
// outside all bands at zero, and the per-band aggregates in ascending band
// order.
func overlay(pop *grid.Grid, bands []int8, p Params) ([]float64, []BandStats) {
	n := p.MaxBand - p.MinBand + 1
	rates := make([]bandRates, n)
	stats := make([]BandStats, n)
	for k := range stats {
		mmi := p.MinBand + k
		d, _ := p.DisplacementRates.Rate(mmi)
		rates[k] = bandRates{fatality: p.Model.Rate(float64(mmi)), displaced: d}
		stats[k].Band = mmi
	}

	displaced := make([]float64, pop.Len())

	if p.BandWorkers < 2 {
		for i, b := range bands {
			if b == noBand {
				continue
			}
			k := int(b) - p.MinBand
			accumulate(&stats[k], rates[k], pop.Cell(i), &displaced[i])
		}
	} else {
		// Bands partition the cells, so each worker writes a disjoint set of
		// output cells and its own stats slot.
		var g errgroup.Group
		g.SetLimit(p.BandWorkers)
		for k := range stats {
			k := k
			g.Go(func() error {
				want := int8(p.MinBand + k)
				for i, b := range bands {
					if b == want {
						accumulate(&stats[k], rates[k], pop.Cell(i), &displaced[i])
					}
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	for _, s := range stats {
		slog.Debug("band processed", "mmi", s.Band, "cells", s.Cells,
			"exposed", s.Exposed, "fatalities", s.Fatalities, "displaced", s.Displaced)
	}
	return displaced, stats
}

// accumulate adds one cell with population pop to its band.
func accumulate(s *BandStats, r bandRates, pop float64, out *float64) {
	fatalities := r.fatality * pop
	raw := r.displaced * pop

	// People who die are not also counted as displaced.
	var net float64
	if raw > fatalities {
		net = raw - fatalities
	}
	*out += net

	s.Cells++
	if !math.IsNaN(pop) {
		s.Exposed += pop
	}
	if !math.IsNaN(fatalities) {
		s.Fatalities += fatalities
	}
	s.Displaced += net
}

// threshold replaces every value below tolerance with the no-data sentinel.
func threshold(values []float64, tolerance float64) {
	for i, v := range values {
		if v < tolerance {
			values[i] = grid.NoData
		}
	}
}
