package grid

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultNoDataValue is written for no-data cells when saving ESRI ASCII grids.
const DefaultNoDataValue = -9999.0

// ascHeader holds the header of an ESRI ASCII raster.
type ascHeader struct {
	Ncols, Nrows     int
	Xcorner, Ycorner float64
	CellSize         float64
	NoDataValue      float64
	HasNoData        bool
}

// ReadASCFile reads an ESRI ASCII raster from path. Files ending in .gz are
// decompressed on the fly.
func ReadASCFile(path string) (*Grid, GeoReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, GeoReference{}, fmt.Errorf("error opening grid: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, GeoReference{}, fmt.Errorf("error opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	g, ref, err := ReadASC(r)
	if err != nil {
		return nil, GeoReference{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, ref, nil
}

// maxPrealloc caps the cells reserved from the header before any data is read.
const maxPrealloc = 1 << 20

// ReadASC parses an ESRI ASCII raster. Cells equal to NODATA_VALUE become
// no-data. Values may be spread over any number of lines.
func ReadASC(reader io.Reader) (*Grid, GeoReference, error) {
	hdr := ascHeader{}
	seen := map[string]bool{}
	var (
		data  []float64
		cells int
	)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	inHeader := true

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if inHeader {
			keyword := strings.ToUpper(fields[0])
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				if len(fields) != 2 {
					return nil, GeoReference{}, fmt.Errorf("line %d: header line must have exactly two fields", lineNo)
				}
				if err := parseHeaderField(keyword, fields[1], &hdr); err != nil {
					return nil, GeoReference{}, fmt.Errorf("line %d: %w", lineNo, err)
				}
				seen[keyword] = true
				continue
			}

			// first data line
			if err := checkHeader(seen, &hdr); err != nil {
				return nil, GeoReference{}, err
			}
			if err := CheckSize(hdr.Nrows, hdr.Ncols); err != nil {
				return nil, GeoReference{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			inHeader = false
			cells = hdr.Nrows * hdr.Ncols
			data = make([]float64, 0, min(cells, maxPrealloc))
		}

		for _, field := range fields {
			if len(data) == cells {
				return nil, GeoReference{}, fmt.Errorf("line %d: more than %d values", lineNo, cells)
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, GeoReference{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if hdr.HasNoData && v == hdr.NoDataValue {
				v = NoData
			}
			data = append(data, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, GeoReference{}, fmt.Errorf("error reading grid: %w", err)
	}
	if inHeader {
		return nil, GeoReference{}, fmt.Errorf("grid has no data rows")
	}
	if len(data) != cells {
		return nil, GeoReference{}, fmt.Errorf("grid has %d values, header declares %dx%d", len(data), hdr.Nrows, hdr.Ncols)
	}

	g, err := Wrap(hdr.Nrows, hdr.Ncols, data)
	if err != nil {
		return nil, GeoReference{}, err
	}
	ref := NorthUp("", hdr.Xcorner, hdr.Ycorner+float64(hdr.Nrows)*hdr.CellSize, hdr.CellSize)
	return g, ref, nil
}

func parseHeaderField(keyword, value string, hdr *ascHeader) error {
	switch keyword {
	case "NCOLS", "NROWS":
		i, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		if keyword == "NCOLS" {
			hdr.Ncols = int(i)
		} else {
			hdr.Nrows = int(i)
		}
	case "XLLCORNER", "XLLCENTER", "YLLCORNER", "YLLCENTER", "CELLSIZE", "NODATA_VALUE":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		switch keyword {
		case "XLLCORNER", "XLLCENTER":
			hdr.Xcorner = f
		case "YLLCORNER", "YLLCENTER":
			hdr.Ycorner = f
		case "CELLSIZE":
			if f <= 0 {
				return fmt.Errorf("CELLSIZE must be greater than 0")
			}
			hdr.CellSize = f
		case "NODATA_VALUE":
			hdr.NoDataValue = f
			hdr.HasNoData = true
		}
	default:
		return fmt.Errorf("unknown header keyword: %s", keyword)
	}
	return nil
}

// checkHeader makes sure all mandatory keywords were present and shifts
// center-registered origins to the lower-left corner.
func checkHeader(seen map[string]bool, hdr *ascHeader) error {
	for _, k := range []string{"NCOLS", "NROWS", "CELLSIZE"} {
		if !seen[k] {
			return fmt.Errorf("grid header is missing %s", k)
		}
	}
	switch {
	case seen["XLLCORNER"] && seen["XLLCENTER"], seen["YLLCORNER"] && seen["YLLCENTER"]:
		return fmt.Errorf("grid header has both corner and center origin")
	case !(seen["XLLCORNER"] || seen["XLLCENTER"]) || !(seen["YLLCORNER"] || seen["YLLCENTER"]):
		return fmt.Errorf("grid header is missing the lower-left origin")
	}
	if seen["XLLCENTER"] {
		hdr.Xcorner -= hdr.CellSize / 2
	}
	if seen["YLLCENTER"] {
		hdr.Ycorner -= hdr.CellSize / 2
	}
	return nil
}

// WriteASC writes g as an ESRI ASCII raster. ref must be north-up with square
// cells. No-data cells are written as DefaultNoDataValue.
func WriteASC(w io.Writer, g *Grid, ref GeoReference) error {
	gt := ref.GeoTransform
	if ref.Rotated() {
		return fmt.Errorf("cannot write rotated grid as ESRI ASCII")
	}
	if gt[1] <= 0 || gt[1] != -gt[5] {
		return fmt.Errorf("ESRI ASCII grids need square north-up cells, got %gx%g", gt[1], gt[5])
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.Cols())
	fmt.Fprintf(bw, "nrows %d\n", g.Rows())
	fmt.Fprintf(bw, "xllcorner %s\n", strconv.FormatFloat(gt[0], 'g', -1, 64))
	fmt.Fprintf(bw, "yllcorner %s\n", strconv.FormatFloat(gt[3]+float64(g.Rows())*gt[5], 'g', -1, 64))
	fmt.Fprintf(bw, "cellsize %s\n", strconv.FormatFloat(gt[1], 'g', -1, 64))
	fmt.Fprintf(bw, "NODATA_value %s\n", strconv.FormatFloat(DefaultNoDataValue, 'g', -1, 64))

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			v := g.At(r, c)
			if math.IsNaN(v) {
				v = DefaultNoDataValue
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteASCFile writes g to path as an ESRI ASCII raster.
func WriteASCFile(path string, g *Grid, ref GeoReference) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating grid file: %w", err)
	}
	if err := WriteASC(f, g, ref); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
