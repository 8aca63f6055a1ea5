package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Extent is an axis-aligned bounding box in map coordinates.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// ParseExtent parses "minx, miny, maxx, maxy".
func ParseExtent(s string) (Extent, error) {
	parts := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	if len(parts) != 4 {
		return Extent{}, fmt.Errorf("extent needs exactly 4 values but got %d instead", len(parts))
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Extent{}, fmt.Errorf("invalid extent value %q: %w", p, err)
		}
		v[i] = f
	}
	e := Extent{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}
	if e.MinX >= e.MaxX || e.MinY >= e.MaxY {
		return Extent{}, fmt.Errorf("extent %q is empty", s)
	}
	return e, nil
}

// Clip returns the cells of g whose footprint intersects e, together with the
// reference of the cropped grid. Cells are never split or resampled.
func Clip(g *Grid, ref GeoReference, e Extent) (*Grid, GeoReference, error) {
	if ref.Rotated() {
		return nil, GeoReference{}, fmt.Errorf("cannot clip a rotated grid")
	}
	gt := ref.GeoTransform
	dx, dy := gt[1], -gt[5]
	if dx <= 0 || dy <= 0 {
		return nil, GeoReference{}, fmt.Errorf("cannot clip grid with cell size %gx%g", gt[1], gt[5])
	}

	c0 := clampIndex(math.Floor((e.MinX-gt[0])/dx), g.Cols())
	c1 := clampIndex(math.Ceil((e.MaxX-gt[0])/dx), g.Cols())
	r0 := clampIndex(math.Floor((gt[3]-e.MaxY)/dy), g.Rows())
	r1 := clampIndex(math.Ceil((gt[3]-e.MinY)/dy), g.Rows())
	if c0 >= c1 || r0 >= r1 {
		return nil, GeoReference{}, fmt.Errorf("extent %v does not intersect the grid", e)
	}

	rows, cols := r1-r0, c1-c0
	data := make([]float64, 0, rows*cols)
	for r := r0; r < r1; r++ {
		start := r*g.cols + c0
		data = append(data, g.data[start:start+cols]...)
	}

	out := GeoReference{Projection: ref.Projection, GeoTransform: gt}
	out.GeoTransform[0] = gt[0] + float64(c0)*dx
	out.GeoTransform[3] = gt[3] - float64(r0)*dy
	return &Grid{rows: rows, cols: cols, data: data}, out, nil
}

func clampIndex(v float64, n int) int {
	if v < 0 {
		return 0
	}
	if v > float64(n) {
		return n
	}
	return int(v)
}
