package report

import (
	"fmt"
	"math"
)

// Demographics splits a population by gender and by age group.
type Demographics struct {
	Gender bool `json:"gender"`
	Age    bool `json:"age"`

	FemaleRatio float64 `json:"female_ratio"`
	YouthRatio  float64 `json:"youth_ratio"`
	AdultRatio  float64 `json:"adult_ratio"`
	ElderRatio  float64 `json:"elder_ratio"`
}

// DefaultDemographics returns the national default ratios for Indonesia.
func DefaultDemographics() Demographics {
	return Demographics{
		Gender:      true,
		Age:         true,
		FemaleRatio: 0.5,
		YouthRatio:  0.263,
		AdultRatio:  0.659,
		ElderRatio:  0.078,
	}
}

// Validate checks that ratios are fractions and that the age groups cover
// the whole population.
func (d Demographics) Validate() error {
	ratios := []struct {
		name  string
		value float64
	}{
		{"female", d.FemaleRatio},
		{"youth", d.YouthRatio},
		{"adult", d.AdultRatio},
		{"elder", d.ElderRatio},
	}
	for _, r := range ratios {
		if math.IsNaN(r.value) || r.value < 0 || r.value > 1 {
			return fmt.Errorf("%s ratio %g outside [0,1]", r.name, r.value)
		}
	}
	if d.Age {
		if sum := d.YouthRatio + d.AdultRatio + d.ElderRatio; math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("age ratios sum to %g, want 1", sum)
		}
	}
	return nil
}

// Breakdown is a population split by gender and age. Groups that are not
// enabled are left at zero.
type Breakdown struct {
	Female int64 `json:"female"`
	Male   int64 `json:"male"`
	Youth  int64 `json:"youth"`
	Adult  int64 `json:"adult"`
	Elder  int64 `json:"elder"`
}

// Enabled reports whether any breakdown is switched on.
func (d Demographics) Enabled() bool { return d.Gender || d.Age }

// Breakdown splits n people.
func (d Demographics) Breakdown(n int64) Breakdown {
	var b Breakdown
	if d.Gender {
		b.Female = int64(math.Round(float64(n) * d.FemaleRatio))
		b.Male = n - b.Female
	}
	if d.Age {
		b.Youth = int64(math.Round(float64(n) * d.YouthRatio))
		b.Elder = int64(math.Round(float64(n) * d.ElderRatio))
		b.Adult = n - b.Youth - b.Elder
	}
	return b
}
