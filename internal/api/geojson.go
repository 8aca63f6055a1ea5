package api

import (
	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/impact"
	"github.com/mr1hm/go-quake-impact/internal/models"
)

type FeatureCollection struct {
	Type     string                 `json:"type"`
	Features []Feature              `json:"features"`
	Style    *impact.Classification `json:"style,omitempty"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// toGeoJSON renders every cell of the assessment grid that holds data as a
// polygon. Grids without a georeference are drawn in cell units.
func toGeoJSON(a *models.Assessment, class impact.Classification) FeatureCollection {
	ref := a.GeoReference
	if ref.IsZero() {
		ref = grid.NorthUp("", 0, float64(a.Grid.Rows()), 1)
	}

	features := make([]Feature, 0, a.Grid.Valid())
	for r := 0; r < a.Grid.Rows(); r++ {
		for c := 0; c < a.Grid.Cols(); c++ {
			v := a.Grid.At(r, c)
			if grid.IsNoData(v) {
				continue
			}
			f := Feature{
				Type: "Feature",
				Geometry: Geometry{
					Type:        "Polygon",
					Coordinates: [][][]float64{ref.CellRing(r, c)},
				},
				Properties: map[string]any{
					"assessment_id": a.ID,
					"row":           r,
					"col":           c,
					"value":         v,
					"class":         class.ClassOf(v),
				},
			}
			features = append(features, f)
		}
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Style:    &class,
	}
}
