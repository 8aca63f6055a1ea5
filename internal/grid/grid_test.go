package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSliceCopies(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	g, err := FromSlice(2, 2, src)
	require.NoError(t, err)

	src[0] = 99
	assert.Equal(t, 1.0, g.At(0, 0))
	assert.Equal(t, 4.0, g.At(1, 1))
}

func TestFromSliceWrongLength(t *testing.T) {
	_, err := FromSlice(2, 3, []float64{1, 2})
	assert.Error(t, err)
}

func TestWrapRejectsBadSizes(t *testing.T) {
	tests := map[string]struct {
		rows, cols int
		tooLarge   bool
	}{
		"zero rows":       {0, 4, false},
		"negative cols":   {2, -1, false},
		"overflow to 0":   {1 << 62, 4, true},
		"square overflow": {1 << 32, 1 << 32, true},
		"above max":       {MaxCells/2 + 1, 2, true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Wrap(tt.rows, tt.cols, nil)
			require.Error(t, err)
			assert.Equal(t, tt.tooLarge, errors.Is(err, ErrTooLarge))

			_, err = FromSlice(tt.rows, tt.cols, []float64{})
			assert.Error(t, err)
		})
	}
}

func TestCheckSizeLimit(t *testing.T) {
	assert.NoError(t, CheckSize(MaxCells, 1))
	assert.NoError(t, CheckSize(1, 1))
	assert.ErrorIs(t, CheckSize(MaxCells+1, 1), ErrTooLarge)
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestCheckShape(t *testing.T) {
	a := New(2, 3, 0)
	b := New(3, 2, 0)
	assert.NoError(t, CheckShape(a, New(2, 3, 1)))
	assert.ErrorIs(t, CheckShape(a, b), ErrShapeMismatch)
}

func TestSumSkipsNoData(t *testing.T) {
	g, err := FromSlice(1, 4, []float64{1, NoData, 2.5, NoData})
	require.NoError(t, err)

	assert.Equal(t, 3.5, g.Sum())
	assert.Equal(t, 2, g.Valid())
}

func TestMinMax(t *testing.T) {
	g, err := FromSlice(2, 2, []float64{NoData, 4, -1, 3})
	require.NoError(t, err)

	min, max, ok := g.MinMax()
	require.True(t, ok)
	assert.Equal(t, -1.0, min)
	assert.Equal(t, 4.0, max)
}

func TestMinMaxAllNoData(t *testing.T) {
	g := New(3, 3, NoData)

	min, max, ok := g.MinMax()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(min))
	assert.True(t, math.IsNaN(max))
	assert.Equal(t, 0.0, g.Sum())
}

func TestMapReturnsNewGrid(t *testing.T) {
	g := New(1, 3, 2)
	doubled := g.Map(func(v float64) float64 { return v * 2 })

	assert.Equal(t, 2.0, g.Cell(0))
	assert.Equal(t, 4.0, doubled.Cell(0))
}

func TestCellRing(t *testing.T) {
	ref := NorthUp("", 100, 50, 10)
	ring := ref.CellRing(1, 2)

	require.Len(t, ring, 5)
	assert.Equal(t, []float64{120, 40}, ring[0])
	assert.Equal(t, []float64{120, 30}, ring[1])
	assert.Equal(t, []float64{130, 30}, ring[2])
	assert.Equal(t, []float64{130, 40}, ring[3])
	assert.Equal(t, ring[0], ring[4])
}
