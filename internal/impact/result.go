package impact

import (
	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/report"
)

// FunctionID names the ITB fatality function in scenario files.
const FunctionID = "ITBFatalityFunction"

// Display strings attached to every result.
const (
	FunctionTitle = "Die or be displaced"
	MapTitle      = "Earthquake impact to population"
	LegendTitle   = "Population density"
	LegendUnits   = "(people per cell)"
	LayerName     = "Estimated displaced population per cell"
)

// FunctionInfo describes the impact function for report consumers.
type FunctionInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Synopsis   string `json:"synopsis"`
	Citations  string `json:"citations"`
	Limitation string `json:"limitation"`
}

// ITBFunction describes the Indonesian earthquake fatality model.
var ITBFunction = FunctionInfo{
	ID:       FunctionID,
	Title:    FunctionTitle,
	Synopsis: "To assess the impact of earthquake on population based on earthquake model developed by ITB",
	Citations: " * Indonesian Earthquake Building-Damage and Fatality Models and Post Disaster Survey Guidelines Development Bali, 27-28 February 2012, 54pp.\n" +
		" * Allen, T. I., Wald, D. J., Earle, P. S., Marano, K. D., Hotovec, A. J., Lin, K., and Hearne, M., 2009. An Atlas of ShakeMaps and population exposure catalog for earthquake loss modeling, Bull. Earthq. Eng. 7, 701-718.\n" +
		" * Jaiswal, K., and Wald, D., 2010. An empirical model for global earthquake fatality estimation, Earthq. Spectra 26, 1017-1037.\n",
	Limitation: " - The model is based on limited number of observed fatality rates during 4 past fatal events.\n" +
		" - The model clearly over-predicts the fatality rates at intensities higher than VIII.\n" +
		" - The model only estimates the expected fatality rate for a given intensity level; however the associated uncertainty for the proposed model is not addressed.\n",
}

// Result is the artifact returned by Run. The engine keeps no reference to it.
type Result struct {
	// Grid holds the displaced people per cell. Cells below the tolerance are
	// no data.
	Grid         *grid.Grid        `json:"-"`
	GeoReference grid.GeoReference `json:"georef"`

	Totals
	Bands             []BandStats       `json:"bands"`
	ExposedPerBand    map[int]float64   `json:"exposed_per_mmi"`
	FatalitiesPerBand map[int]float64   `json:"fatalities_per_mmi"`
	DisplacedPerBand  map[int]float64   `json:"displaced_per_mmi"`
	Breakdown         *report.Breakdown `json:"displaced_breakdown,omitempty"`

	Classification Classification `json:"style"`

	// NoDisplacement is set when no cell is above the tolerance.
	NoDisplacement bool `json:"no_displacement"`

	Function      FunctionInfo `json:"function"`
	Question      string       `json:"question"`
	Summary       report.Table `json:"summary"`
	ImpactSummary string       `json:"impact_summary"`
	MapTitle      string       `json:"map_title"`
	LegendTitle   string       `json:"legend_title"`
	LegendUnits   string       `json:"legend_units"`
	LegendNotes   string       `json:"legend_notes"`
	Name          string       `json:"name"`
}

// assemble packages the outputs of the pipeline stages.
func assemble(in Input, r *grid.Grid, bands []BandStats, totals Totals, class Classification, p Params, f *report.Formatter) *Result {
	res := &Result{
		Grid:              r,
		GeoReference:      in.GeoReference,
		Totals:            totals,
		Bands:             bands,
		ExposedPerBand:    make(map[int]float64, len(bands)),
		FatalitiesPerBand: make(map[int]float64, len(bands)),
		DisplacedPerBand:  make(map[int]float64, len(bands)),
		Classification:    class,
		NoDisplacement:    r.Valid() == 0,
		Function:          ITBFunction,
		Question:          report.Question(in.HazardName, in.ExposureName, "die or be displaced"),
		MapTitle:          MapTitle,
		LegendTitle:       LegendTitle,
		LegendUnits:       LegendUnits,
		LegendNotes:       report.LegendNotes(f),
		Name:              LayerName,
	}
	for _, b := range bands {
		res.ExposedPerBand[b.Band] = b.Exposed
		res.FatalitiesPerBand[b.Band] = b.Fatalities
		res.DisplacedPerBand[b.Band] = b.Displaced
	}
	if p.Demographics.Enabled() {
		b := p.Demographics.Breakdown(totals.Displaced)
		res.Breakdown = &b
	}

	res.Summary = report.Summary(report.Figures{
		Question:     res.Question,
		Fatalities:   totals.Fatalities,
		Displaced:    totals.Displaced,
		Population:   totals.Population,
		Rounding:     p.Rounding,
		Needs:        totals.Needs,
		Demographics: p.Demographics,
	}, f)
	res.ImpactSummary = res.Summary.String()
	return res
}
