package report

import "fmt"

// Figures are the inputs of the impact summary.
type Figures struct {
	Question     string
	Fatalities   int64
	Displaced    int64
	Population   int64
	Rounding     int64
	Needs        Needs
	Demographics Demographics
}

// Question phrases the assessment the way it is shown above the summary.
func Question(hazard, exposure, function string) string {
	if hazard == "" {
		hazard = "earthquake"
	}
	if exposure == "" {
		exposure = "people"
	}
	return fmt.Sprintf("In the event of %s how many %s might %s?", hazard, exposure, function)
}

// Summary builds the impact summary table. The displaced row is always
// present; callers pass zero when the displaced total is switched off.
func Summary(fig Figures, f *Formatter) Table {
	var t Table
	t.row(fig.Question)

	t.header("Fatalities", f.Int(fig.Fatalities))
	t.header("People displaced", f.Int(fig.Displaced))
	t.row("Map shows density estimate of displaced population")

	t.header("Needs per week", "Total")
	t.row("Rice [kg]", f.Int(fig.Needs.Rice))
	t.row("Drinking Water [l]", f.Int(fig.Needs.DrinkingWater))
	t.row("Clean Water [l]", f.Int(fig.Needs.CleanWater))
	t.row("Family Kits", f.Int(fig.Needs.FamilyKits))
	t.row("Toilets", f.Int(fig.Needs.Toilets))

	t.header("Action Checklist:")
	if fig.Fatalities > 0 {
		t.row(fmt.Sprintf("Are there enough victim identification units available for %s people?", f.Int(fig.Fatalities)))
	}
	if fig.Displaced > 0 {
		t.row(fmt.Sprintf("Are there enough shelters and relief items available for %s people?", f.Int(fig.Displaced)))
		t.row("If yes, where are they located and how will we distribute them?")
		t.row("If no, where can we obtain additional relief items from and how will we transport them?")
	}

	if d := fig.Demographics; d.Enabled() && fig.Displaced > 0 {
		b := d.Breakdown(fig.Displaced)
		t.header("Displaced people by group", "Total")
		if d.Gender {
			t.row("Female", f.Int(b.Female))
			t.row("Male", f.Int(b.Male))
		}
		if d.Age {
			t.row("Youth", f.Int(b.Youth))
			t.row("Adult", f.Int(b.Adult))
			t.row("Elderly", f.Int(b.Elder))
		}
	}

	t.header("Notes")
	t.row(fmt.Sprintf("Total population: %s", f.Int(fig.Population)))
	t.row("People are considered to be displaced if they experience and survive a shake level of more than 5 on the MMI scale")
	t.row("Minimum needs are defined in BNPB regulation 7/2008")
	t.row("The fatality calculation assumes that no fatalities occur for shake levels below 4 and fatality counts of less than 50 are disregarded.")
	t.row("All values are rounded up to the nearest integer in order to avoid representing human lives as fractionals.")

	t.header("Notes")
	t.row("Fatality model is from Institute of Teknologi Bandung 2012.")
	t.row(fmt.Sprintf("Population numbers rounded to nearest %s.", f.Int(fig.Rounding)))
	return t
}

// LegendNotes describes the thousand separator used in legend labels.
func LegendNotes(f *Formatter) string {
	return fmt.Sprintf("Thousand separator is represented by '%s'", f.Separator())
}
