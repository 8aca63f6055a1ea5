package impact

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mr1hm/go-quake-impact/internal/hazard"
	"github.com/mr1hm/go-quake-impact/internal/report"
)

// MaxBand is the highest intensity band a rate table can hold (MMI XII).
const MaxBand = 12

var (
	// ErrInvalidParams is wrapped by every parameter validation failure other
	// than a missing displacement rate.
	ErrInvalidParams = errors.New("invalid model parameters")

	// ErrMissingRate is wrapped by MissingRateError.
	ErrMissingRate = errors.New("no displacement rate for band")
)

// MissingRateError reports a band inside the configured intensity range that
// has no displacement rate. Cells and Population describe the part of the
// input that falls in that band, when known.
type MissingRateError struct {
	Band       int
	Cells      int
	Population float64
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no displacement rate for mmi = %d (%d cells, population %g in band)", e.Band, e.Cells, e.Population)
}

func (e *MissingRateError) Unwrap() error { return ErrMissingRate }

// RateTable maps intensity bands 0..MaxBand to the fraction of the exposed
// population that is displaced.
type RateTable struct {
	rates [MaxBand + 1]float64
	set   [MaxBand + 1]bool
}

// NewRateTable builds a table from a band -> rate mapping.
func NewRateTable(rates map[int]float64) (RateTable, error) {
	var t RateTable
	for band, rate := range rates {
		if err := t.Set(band, rate); err != nil {
			return RateTable{}, err
		}
	}
	return t, nil
}

// DefaultRateTable returns the displacement rates of the ITB model: nobody is
// displaced below MMI 6 and everybody who survives is displaced from MMI 6 to 10.
func DefaultRateTable() RateTable {
	var t RateTable
	for band := 1; band <= 10; band++ {
		rate := 0.0
		if band >= 6 {
			rate = 1.0
		}
		t.rates[band], t.set[band] = rate, true
	}
	return t
}

// Set assigns the displacement rate of band.
func (t *RateTable) Set(band int, rate float64) error {
	if band < 0 || band > MaxBand {
		return fmt.Errorf("%w: band %d outside 0..%d", ErrInvalidParams, band, MaxBand)
	}
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: displacement rate %g for band %d outside [0,1]", ErrInvalidParams, rate, band)
	}
	t.rates[band], t.set[band] = rate, true
	return nil
}

// Rate returns the displacement rate of band and whether one is configured.
func (t RateTable) Rate(band int) (float64, bool) {
	if band < 0 || band > MaxBand || !t.set[band] {
		return 0, false
	}
	return t.rates[band], true
}

// Bands returns the configured bands in ascending order.
func (t RateTable) Bands() []int {
	var bands []int
	for b, ok := range t.set {
		if ok {
			bands = append(bands, b)
		}
	}
	sort.Ints(bands)
	return bands
}

// Map returns the table as a band -> rate mapping.
func (t RateTable) Map() map[int]float64 {
	m := make(map[int]float64)
	for _, b := range t.Bands() {
		m[b] = t.rates[b]
	}
	return m
}

// Params configures one run of the engine. The zero value is not usable;
// start from DefaultParams.
type Params struct {
	// Model converts a band's intensity to a fatality rate.
	Model hazard.FatalityModel

	// DisplacementRates must hold a rate for every band in MinBand..MaxBand.
	DisplacementRates RateTable

	// MinBand and MaxBand bound the inclusive range of intensity bands.
	MinBand, MaxBand int

	// Step is the half-width of a band: a cell belongs to band mmi when
	// mmi-Step < H <= mmi+Step. It must be in (0, 0.5] so bands never overlap.
	Step float64

	// Tolerance is the displaced density below which output cells are set to
	// no data so they render transparent.
	Tolerance float64

	// IncludeDisplaced controls whether the displaced total is reported.
	IncludeDisplaced bool

	// Rounding is the granularity headline figures are rounded to.
	Rounding int64

	// Locale selects the thousand separator used in reports and legend labels.
	Locale string

	// LegacyNaNSentinel keeps the 999999 substitution for legend boundaries
	// that cannot be computed. When false the legend is left empty instead.
	LegacyNaNSentinel bool

	// BandWorkers is the number of bands accumulated concurrently. Values
	// below 2 process bands in a single pass.
	BandWorkers int

	// Demographics configures the gender and age breakdown of displaced people.
	Demographics report.Demographics
}

// DefaultParams returns the parameters of the published ITB model.
func DefaultParams() Params {
	return Params{
		Model:             hazard.ITB,
		DisplacementRates: DefaultRateTable(),
		MinBand:           2,
		MaxBand:           9,
		Step:              0.5,
		Tolerance:         0.01,
		IncludeDisplaced:  true,
		Rounding:          1000,
		Locale:            "id",
		LegacyNaNSentinel: true,
		Demographics:      report.DefaultDemographics(),
	}
}

// Validate checks p before any grid is touched.
func (p Params) Validate() error {
	if math.IsNaN(p.Model.X) || math.IsNaN(p.Model.Y) || math.IsInf(p.Model.X, 0) || math.IsInf(p.Model.Y, 0) {
		return fmt.Errorf("%w: model coefficients must be finite", ErrInvalidParams)
	}
	if p.MinBand < 0 || p.MaxBand > MaxBand || p.MinBand > p.MaxBand {
		return fmt.Errorf("%w: band range %d..%d not within 0..%d", ErrInvalidParams, p.MinBand, p.MaxBand, MaxBand)
	}
	if !(p.Step > 0 && p.Step <= 0.5) {
		return fmt.Errorf("%w: step %g must be in (0, 0.5]", ErrInvalidParams, p.Step)
	}
	if math.IsNaN(p.Tolerance) || p.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance %g must be non-negative", ErrInvalidParams, p.Tolerance)
	}
	if p.Rounding < 1 {
		return fmt.Errorf("%w: rounding %d must be at least 1", ErrInvalidParams, p.Rounding)
	}
	if p.BandWorkers < 0 {
		return fmt.Errorf("%w: band workers %d must not be negative", ErrInvalidParams, p.BandWorkers)
	}
	if err := p.Demographics.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	for band := p.MinBand; band <= p.MaxBand; band++ {
		if r := p.Model.Rate(float64(band)); !(r >= 0 && r <= 1) {
			return fmt.Errorf("%w: fatality rate %g at band %d not in [0, 1]", ErrInvalidParams, r, band)
		}
	}
	for band := p.MinBand; band <= p.MaxBand; band++ {
		if _, ok := p.DisplacementRates.Rate(band); !ok {
			return &MissingRateError{Band: band}
		}
	}
	return nil
}
