package impact

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-quake-impact/internal/grid"
)

func TestBandOf(t *testing.T) {
	tests := []struct {
		h    float64
		step float64
		want int
	}{
		{h: 7, step: 0.5, want: 7},
		{h: 6.5, step: 0.5, want: 6},
		{h: 6.50001, step: 0.5, want: 7},
		{h: 7.5, step: 0.5, want: 7},
		{h: 1.5, step: 0.5, want: noBand},
		{h: 1.51, step: 0.5, want: 2},
		{h: 9.5, step: 0.5, want: 9},
		{h: 9.51, step: 0.5, want: noBand},
		{h: -3, step: 0.5, want: noBand},
		{h: math.NaN(), step: 0.5, want: noBand},
		{h: 6.2, step: 0.25, want: 6},
		{h: 6.25, step: 0.25, want: 6},
		{h: 6.3, step: 0.25, want: noBand},
		{h: 6.8, step: 0.25, want: 7},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%g/%g", test.h, test.step), func(t *testing.T) {
			assert.Equal(t, test.want, bandOf(test.h, 2, 9, test.step))
		})
	}
}

// mixedInputs returns intensity and population grids covering every band,
// band edges, out of range values and no-data cells.
func mixedInputs(t *testing.T) (*grid.Grid, *grid.Grid) {
	t.Helper()
	h, err := grid.FromSlice(3, 6, []float64{
		1.0, 1.5, 2.0, 2.5, 3.49, 3.5,
		4.2, 5.5, 6.0, 6.6, 7.4, math.NaN(),
		8.0, 8.5, 9.0, 9.5, 9.6, 10.2,
	})
	require.NoError(t, err)
	p, err := grid.FromSlice(3, 6, []float64{
		10, 20, 30, 40, 50, 60,
		70, 80, math.NaN(), 1000, 2000, 500,
		3000, 4000, 5000, 6000, 7000, 8000,
	})
	require.NoError(t, err)
	return h, p
}

func TestOverlayPartition(t *testing.T) {
	h, pop := mixedInputs(t)
	p := DefaultParams()

	bands := assignBands(h, p)
	_, stats := overlay(pop, bands, p)

	var cells int
	var exposed float64
	for _, s := range stats {
		cells += s.Cells
		exposed += s.Exposed
	}

	// 1.0, 1.5, NaN, 9.6 and 10.2 are outside every band.
	assert.Equal(t, h.Len()-5, cells)
	assert.LessOrEqual(t, exposed, pop.Sum())
	assert.Equal(t, pop.Sum()-10-20-500-7000-8000, exposed)
}

func TestOverlayBandInvariants(t *testing.T) {
	h, pop := mixedInputs(t)
	p := DefaultParams()

	displaced, stats := overlay(pop, assignBands(h, p), p)
	for _, s := range stats {
		assert.False(t, math.IsNaN(s.Exposed), "band %d", s.Band)
		assert.False(t, math.IsNaN(s.Fatalities), "band %d", s.Band)
		assert.GreaterOrEqual(t, s.Displaced, 0.0, "band %d", s.Band)
		assert.LessOrEqual(t, s.Displaced, s.Exposed-s.Fatalities+1e-9, "band %d", s.Band)
		if s.Band < 4 {
			assert.Equal(t, 0.0, s.Fatalities, "band %d", s.Band)
		}
	}
	for i, v := range displaced {
		assert.False(t, math.IsNaN(v), "cell %d", i)
		assert.GreaterOrEqual(t, v, 0.0, "cell %d", i)
	}
}

func TestOverlayNoDataPopulationDoesNotSpoilBand(t *testing.T) {
	h := grid.New(1, 3, 6)
	pop, err := grid.FromSlice(1, 3, []float64{100, math.NaN(), 200})
	require.NoError(t, err)
	p := DefaultParams()

	displaced, stats := overlay(pop, assignBands(h, p), p)
	s := stats[6-p.MinBand]

	assert.Equal(t, 6, s.Band)
	assert.Equal(t, 3, s.Cells)
	assert.Equal(t, 300.0, s.Exposed)
	assert.False(t, math.IsNaN(s.Fatalities))
	assert.False(t, math.IsNaN(s.Displaced))
	assert.Equal(t, 0.0, displaced[1])
}

func TestOverlayFatalitiesExceedDisplacement(t *testing.T) {
	h := grid.New(1, 2, 9)
	pop := grid.New(1, 2, 1000)
	p := DefaultParams()
	require.NoError(t, p.DisplacementRates.Set(9, 0))

	displaced, stats := overlay(pop, assignBands(h, p), p)
	s := stats[9-p.MinBand]

	assert.Greater(t, s.Fatalities, 0.0)
	assert.Equal(t, 0.0, s.Displaced)
	assert.Equal(t, []float64{0, 0}, displaced)
}

func TestOverlayParallelMatchesSequential(t *testing.T) {
	h, pop := mixedInputs(t)
	seq := DefaultParams()
	par := DefaultParams()
	par.BandWorkers = 4

	d1, s1 := overlay(pop, assignBands(h, seq), seq)
	d2, s2 := overlay(pop, assignBands(h, par), par)

	require.Equal(t, len(d1), len(d2))
	for i := range d1 {
		assert.Equal(t, math.Float64bits(d1[i]), math.Float64bits(d2[i]), "cell %d", i)
	}
	assert.Equal(t, s1, s2)
}

func TestThreshold(t *testing.T) {
	values := []float64{0, 0.005, 0.01, 3}
	threshold(values, 0.01)

	assert.True(t, math.IsNaN(values[0]))
	assert.True(t, math.IsNaN(values[1]))
	assert.Equal(t, 0.01, values[2])
	assert.Equal(t, 3.0, values[3])
}
