package grid

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleASC = `ncols 3
nrows 2
xllcorner 106.5
yllcorner -6.5
cellsize 0.5
NODATA_value -9999
1 2 -9999
4 5
6
`

func TestReadASC(t *testing.T) {
	g, ref, err := ReadASC(strings.NewReader(sampleASC))
	require.NoError(t, err)

	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 3, g.Cols())
	assert.Equal(t, 2.0, g.At(0, 1))
	assert.True(t, math.IsNaN(g.At(0, 2)))
	assert.Equal(t, 6.0, g.At(1, 2))
	assert.Equal(t, [6]float64{106.5, 0.5, 0, -5.5, 0, -0.5}, ref.GeoTransform)
}

func TestReadASCCenterOrigin(t *testing.T) {
	src := "NCOLS 1\nNROWS 1\nXLLCENTER 1\nYLLCENTER 1\nCELLSIZE 2\n7\n"
	g, ref, err := ReadASC(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 7.0, g.At(0, 0))
	assert.Equal(t, 0.0, ref.GeoTransform[0])
	assert.Equal(t, 2.0, ref.GeoTransform[3])
}

func TestReadASCErrors(t *testing.T) {
	tests := map[string]string{
		"missing ncols":   "nrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n",
		"bad cellsize":    "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 0\n1\n",
		"unknown keyword": "ncols 1\nnrows 1\nfoo 3\n1\n",
		"too few values":  "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n",
		"too many values": "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2\n",
		"both origins":    "ncols 1\nnrows 1\nxllcorner 0\nxllcenter 0\nyllcorner 0\ncellsize 1\n1\n",
		"no data rows":    "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n",
		"bad value":       "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1x\n",
		"zero rows":       "ncols 1\nnrows 0\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n",
		"huge header":     "ncols 4294967295\nnrows 4294967295\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadASC(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestReadASCTooLarge(t *testing.T) {
	src := "ncols 4294967295\nnrows 4294967295\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"
	_, _, err := ReadASC(strings.NewReader(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "line 6")

	// Within the limit the header alone does not reserve the full grid.
	src = "ncols 16384\nnrows 16384\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n"
	_, _, err = ReadASC(strings.NewReader(src))
	assert.ErrorContains(t, err, "header declares 16384x16384")
}

func TestWriteReadASCRoundTrip(t *testing.T) {
	g, ref, err := ReadASC(strings.NewReader(sampleASC))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.asc")
	require.NoError(t, WriteASCFile(path, g, ref))

	back, backRef, err := ReadASCFile(path)
	require.NoError(t, err)
	assert.Equal(t, ref.GeoTransform, backRef.GeoTransform)
	for i := 0; i < g.Len(); i++ {
		if math.IsNaN(g.Cell(i)) {
			assert.True(t, math.IsNaN(back.Cell(i)), "cell %d", i)
			continue
		}
		assert.Equal(t, g.Cell(i), back.Cell(i), "cell %d", i)
	}
}

func TestWriteASCRejectsRotation(t *testing.T) {
	ref := GeoReference{GeoTransform: [6]float64{0, 1, 0.1, 0, 0, -1}}
	var buf bytes.Buffer
	assert.Error(t, WriteASC(&buf, New(1, 1, 0), ref))
}
