package report

// Needs are the weekly minimum relief needs of a displaced population, as
// defined in BNPB regulation 7/2008.
type Needs struct {
	Rice          int64 `json:"rice_kg"`
	DrinkingWater int64 `json:"drinking_water_l"`
	CleanWater    int64 `json:"clean_water_l"`
	FamilyKits    int64 `json:"family_kits"`
	Toilets       int64 `json:"toilets"`
}

// NeedsFor returns the weekly needs of displaced people. Fractions are
// truncated.
func NeedsFor(displaced int64) Needs {
	return Needs{
		Rice:          int64(float64(displaced) * 2.8),
		DrinkingWater: int64(float64(displaced) * 17.5),
		CleanWater:    displaced * 67,
		FamilyKits:    displaced / 5,
		Toilets:       displaced / 20,
	}
}
