package impact

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/report"
)

// minReportedFatalities is the smallest fatality total that is reported.
// Smaller totals are not considered a reliable signal from the model.
const minReportedFatalities = 50

// Totals holds the headline figures of a run.
type Totals struct {
	Population int64 `json:"total_population"`
	Fatalities int64 `json:"total_fatalities"`
	Displaced  int64 `json:"total_displaced"`

	// Unrounded sums, before suppression.
	RawPopulation float64 `json:"raw_population"`
	RawFatalities float64 `json:"raw_fatalities"`
	RawDisplaced  float64 `json:"raw_displaced"`

	Needs report.Needs `json:"needs"`
}

// Aggregate computes the headline figures from the population grid and the
// per-band aggregates.
func Aggregate(pop *grid.Grid, bands []BandStats, p Params) Totals {
	fatalities := make([]float64, len(bands))
	displaced := make([]float64, len(bands))
	for i, b := range bands {
		fatalities[i] = b.Fatalities
		displaced[i] = b.Displaced
	}

	t := Totals{
		RawPopulation: pop.Sum(),
		RawFatalities: floats.Sum(fatalities),
		RawDisplaced:  floats.Sum(displaced),
	}
	t.Population = roundTo(t.RawPopulation, p.Rounding)

	t.Fatalities = roundTo(t.RawFatalities, p.Rounding)
	if t.Fatalities < minReportedFatalities {
		t.Fatalities = 0
	}

	if p.IncludeDisplaced {
		t.Displaced = roundTo(t.RawDisplaced, p.Rounding)
	}
	t.Needs = report.NeedsFor(t.Displaced)
	return t
}

// roundTo rounds v half away from zero to the nearest multiple of unit.
func roundTo(v float64, unit int64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v/float64(unit))) * unit
}
