package batch

import (
	"fmt"

	"github.com/tealeg/xlsx/v2"

	"github.com/mr1hm/go-quake-impact/internal/impact"
)

// WriteWorkbook saves the headline figures and the per-band breakdown of res
// as an xlsx workbook with a "Summary" and a "Bands" sheet.
func WriteWorkbook(path string, s Scenario, res *impact.Result) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return fmt.Errorf("error adding summary sheet: %w", err)
	}
	addStringRow(summary, "Scenario", s.Label)
	addStringRow(summary, "Question", res.Question)
	addIntRow(summary, "Total population", res.Population)
	addIntRow(summary, "Fatalities", res.Fatalities)
	addIntRow(summary, "People displaced", res.Displaced)
	addIntRow(summary, "Rice [kg]", res.Needs.Rice)
	addIntRow(summary, "Drinking Water [l]", res.Needs.DrinkingWater)
	addIntRow(summary, "Clean Water [l]", res.Needs.CleanWater)
	addIntRow(summary, "Family Kits", res.Needs.FamilyKits)
	addIntRow(summary, "Toilets", res.Needs.Toilets)

	bands, err := f.AddSheet("Bands")
	if err != nil {
		return fmt.Errorf("error adding bands sheet: %w", err)
	}
	header := bands.AddRow()
	for _, h := range []string{"MMI", "Cells", "Exposed", "Fatalities", "Displaced"} {
		header.AddCell().SetString(h)
	}
	for _, b := range res.Bands {
		row := bands.AddRow()
		row.AddCell().SetInt(b.Band)
		row.AddCell().SetInt(b.Cells)
		row.AddCell().SetFloat(b.Exposed)
		row.AddCell().SetFloat(b.Fatalities)
		row.AddCell().SetFloat(b.Displaced)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("error saving workbook: %w", err)
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}

func addIntRow(sheet *xlsx.Sheet, label string, value int64) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetInt64(value)
}
