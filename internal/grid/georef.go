package grid

// GeoReference locates a grid on the earth. The engine treats it as opaque
// and hands it back unchanged with its output.
//
// GeoTransform follows the GDAL convention:
//
//	x = GeoTransform[0] + col*GeoTransform[1] + row*GeoTransform[2]
//	y = GeoTransform[3] + col*GeoTransform[4] + row*GeoTransform[5]
type GeoReference struct {
	Projection   string     `json:"projection,omitempty"`
	GeoTransform [6]float64 `json:"geotransform"`
}

// NorthUp returns the reference of an unrotated grid whose upper-left corner
// is at (x0, y0) with square cells of the given size.
func NorthUp(projection string, x0, y0, cellSize float64) GeoReference {
	return GeoReference{
		Projection:   projection,
		GeoTransform: [6]float64{x0, cellSize, 0, y0, 0, -cellSize},
	}
}

// IsZero reports whether no geotransform was supplied.
func (r GeoReference) IsZero() bool {
	return r.GeoTransform == [6]float64{}
}

// Rotated reports whether the transform has rotation terms.
func (r GeoReference) Rotated() bool {
	return r.GeoTransform[2] != 0 || r.GeoTransform[4] != 0
}

// Point returns the map coordinates of the corner of cell (row, col) nearest
// the origin.
func (r GeoReference) Point(row, col float64) (x, y float64) {
	gt := r.GeoTransform
	return gt[0] + col*gt[1] + row*gt[2], gt[3] + col*gt[4] + row*gt[5]
}

// CellRing returns the closed ring of corner coordinates of cell (row, col)
// as [x, y] pairs, counter-clockwise for a north-up grid.
func (r GeoReference) CellRing(row, col int) [][]float64 {
	fr, fc := float64(row), float64(col)
	x0, y0 := r.Point(fr, fc)
	x1, y1 := r.Point(fr, fc+1)
	x2, y2 := r.Point(fr+1, fc+1)
	x3, y3 := r.Point(fr+1, fc)
	return [][]float64{{x0, y0}, {x3, y3}, {x2, y2}, {x1, y1}, {x0, y0}}
}
