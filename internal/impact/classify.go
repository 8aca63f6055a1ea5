package impact

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mr1hm/go-quake-impact/internal/grid"
)

// NumClasses is the number of legend classes.
const NumClasses = 5

const (
	// nanBoundary replaces legend boundaries that are NaN. It is a workaround
	// kept for output compatibility, not a meaningful density.
	nanBoundary = 999999

	transparentClass = 100
	opaqueClass      = 30
)

// Palette holds the class colours from lowest to highest density.
var Palette = [NumClasses]string{"#EEFFEE", "#FFFF7F", "#E15500", "#E4001B", "#730000"}

// ErrNoValidRange is returned by Classify when the grid holds no data and the
// legacy sentinel is disabled.
var ErrNoValidRange = errors.New("output grid has no valid values to classify")

// Class is one legend entry.
type Class struct {
	Lower        int64  `json:"lower"`
	Upper        int64  `json:"upper"`
	Quantity     int64  `json:"quantity"`
	Colour       string `json:"colour"`
	Transparency int    `json:"transparency"`
	Label        string `json:"label"`
}

// Classification is the legend of an output grid.
type Classification struct {
	// Boundaries are the unrounded upper bounds of the classes.
	Boundaries []float64 `json:"boundaries"`
	Classes    []Class   `json:"classes"`
}

// Classify builds a five class legend for r, which must already be
// thresholded. The first class spans zero to the smallest value; the other
// four split the range between smallest and largest value into equal widths.
// Labels are formatted with formatInt.
func Classify(r *grid.Grid, legacy bool, formatInt func(int64) string) (Classification, error) {
	min, max, ok := r.MinMax()
	if !ok && !legacy {
		return Classification{}, ErrNoValidRange
	}

	bounds := floats.Span(make([]float64, NumClasses), min, max)
	for i, b := range bounds {
		if math.IsNaN(b) {
			bounds[i] = nanBoundary
		}
	}

	c := Classification{
		Boundaries: bounds,
		Classes:    make([]Class, NumClasses),
	}
	var lower int64
	for i, b := range bounds {
		upper := int64(math.Round(b))
		transparency := opaqueClass
		if lower == 0 {
			transparency = transparentClass
		}
		c.Classes[i] = Class{
			Lower:        lower,
			Upper:        upper,
			Quantity:     upper,
			Colour:       Palette[i],
			Transparency: transparency,
			Label:        fmt.Sprintf("%s - %s", formatInt(lower), formatInt(upper)),
		}
		lower = upper
	}
	return c, nil
}

// ClassOf returns the index of the class v falls in: the first class whose
// boundary is not below v. It returns -1 for no-data and for an empty legend.
func (c Classification) ClassOf(v float64) int {
	if math.IsNaN(v) || len(c.Boundaries) == 0 {
		return -1
	}
	for i, b := range c.Boundaries {
		if v <= b {
			return i
		}
	}
	return len(c.Boundaries) - 1
}
