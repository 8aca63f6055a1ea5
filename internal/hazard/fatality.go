// Package hazard holds the fatality rate models used to turn ground shaking
// intensity into expected deaths per person exposed.
package hazard

import "math"

// minFatalMMI is the intensity below which no fatalities are assumed,
// whatever the fitted curve says.
const minFatalMMI = 4.0

// FatalityModel implements the power-law fatality curve of Allen et al. (2009)
// as refit for Indonesia by Institut Teknologi Bandung:
//
//	rate(mmi) = 10^(X*mmi - Y)
type FatalityModel struct {
	// X and Y are the model coefficients.
	X, Y float64

	// Label is the name of the model.
	Label string
}

// ITB is the Indonesian earthquake fatality model from:
//
// Indonesian Earthquake Building-Damage and Fatality Models and Post Disaster
// Survey Guidelines Development, Bali, 27-28 February 2012, 54pp.
var ITB = FatalityModel{
	X:     0.62275231,
	Y:     8.03314466,
	Label: "ITB2012",
}

// Rate returns the fraction of the population expected to die at shaking
// intensity mmi.
func (m FatalityModel) Rate(mmi float64) float64 {
	if mmi < minFatalMMI {
		return 0
	}
	return math.Pow(10, m.X*mmi-m.Y)
}

// Name returns the label for this model.
func (m FatalityModel) Name() string { return m.Label }

// Rater is an interface for any type that can calculate a fatality rate
// for a given intensity.
type Rater interface {
	Rate(mmi float64) float64
	Name() string
}
