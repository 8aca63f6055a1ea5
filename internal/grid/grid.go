// Package grid provides the two-dimensional raster type shared by the
// hazard, exposure and impact layers.
//
// Cells are stored row-major as float64. NaN marks a cell with no data, which
// is distinct from a cell holding zero. A Grid is not modified after it is
// built; operations that change values produce a new Grid.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when grids that must be co-registered do not
// have the same number of rows and columns.
var ErrShapeMismatch = errors.New("grid shapes differ")

// ErrTooLarge is returned for grids with more than MaxCells cells.
var ErrTooLarge = errors.New("grid too large")

// MaxCells bounds the number of cells of a grid (2 GiB of float64).
const MaxCells = 1 << 28

// NoData is the sentinel stored in cells that hold no value.
var NoData = math.NaN()

// IsNoData reports whether v is the no-data sentinel.
func IsNoData(v float64) bool { return math.IsNaN(v) }

// Grid is an immutable rows x cols raster of float64 cells.
type Grid struct {
	rows, cols int
	data       []float64
}

// New returns a rows x cols grid with every cell set to v.
func New(rows, cols int, v float64) *Grid {
	data := make([]float64, rows*cols)
	if v != 0 {
		for i := range data {
			data[i] = v
		}
	}
	return &Grid{rows: rows, cols: cols, data: data}
}

// CheckSize returns an error unless a rows x cols grid has at least one cell
// and at most MaxCells.
func CheckSize(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("grid of %dx%d has no cells", rows, cols)
	}
	if rows > MaxCells/cols {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrTooLarge, rows, cols, MaxCells)
	}
	return nil
}

// FromSlice copies data, which must hold rows*cols values in row-major order,
// into a new grid.
func FromSlice(rows, cols int, data []float64) (*Grid, error) {
	if err := CheckSize(rows, cols); err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("grid of %dx%d needs %d values, got %d", rows, cols, rows*cols, len(data))
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return &Grid{rows: rows, cols: cols, data: cp}, nil
}

// Wrap builds a grid that takes ownership of data. The caller must not
// modify data afterwards.
func Wrap(rows, cols int, data []float64) (*Grid, error) {
	if err := CheckSize(rows, cols); err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("grid of %dx%d needs %d values, got %d", rows, cols, rows*cols, len(data))
	}
	return &Grid{rows: rows, cols: cols, data: data}, nil
}

// FromRows builds a grid from a slice of equal-length rows.
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return &Grid{}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &Grid{rows: len(rows), cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.data) }

// At returns the value of the cell at row r, column c.
func (g *Grid) At(r, c int) float64 { return g.data[r*g.cols+c] }

// Cell returns the value of the i-th cell in row-major order.
func (g *Grid) Cell(i int) float64 { return g.data[i] }

// Values returns a copy of the cells in row-major order.
func (g *Grid) Values() []float64 {
	cp := make([]float64, len(g.data))
	copy(cp, g.data)
	return cp
}

// SameShape reports whether g and o have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.rows == o.rows && g.cols == o.cols
}

// CheckShape returns ErrShapeMismatch if g and o differ in shape.
func CheckShape(g, o *Grid) error {
	if !g.SameShape(o) {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, g.rows, g.cols, o.rows, o.cols)
	}
	return nil
}

// Sum returns the sum of all cells, skipping no-data cells.
func (g *Grid) Sum() float64 {
	var s float64
	for _, v := range g.data {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

// Valid returns the number of cells holding data.
func (g *Grid) Valid() int {
	var n int
	for _, v := range g.data {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// MinMax returns the smallest and largest values, ignoring no-data cells.
// ok is false when the grid holds no data, in which case min and max are NaN.
func (g *Grid) MinMax() (min, max float64, ok bool) {
	min, max = math.NaN(), math.NaN()
	for _, v := range g.data {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			min, max, ok = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// Map returns a new grid whose cells are f applied to the cells of g.
func (g *Grid) Map(f func(v float64) float64) *Grid {
	out := make([]float64, len(g.data))
	for i, v := range g.data {
		out[i] = f(v)
	}
	return &Grid{rows: g.rows, cols: g.cols, data: out}
}
