package models

import (
	"time"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/impact"
)

type Status string

const (
	StatusComplete Status = "COMPLETE"
	StatusFailed   Status = "FAILED"
)

type Assessment struct {
	ID               string            `json:"id"`     // uuid, or derived from scenario file + label
	Label            string            `json:"label"`  // scenario label or caller supplied name
	Source           string            `json:"source"` // "api" or the scenario file path
	Hazard           string            `json:"hazard"`
	Exposure         string            `json:"exposure"`
	Status           Status            `json:"status"`
	Error            string            `json:"error,omitempty"`
	Population       int64             `json:"total_population"`
	Fatalities       int64             `json:"total_fatalities"`
	Displaced        int64             `json:"total_displaced"`
	IncludeDisplaced bool              `json:"include_displaced"`
	GeoReference     grid.GeoReference `json:"georef"`
	Grid             *grid.Grid        `json:"-"` // displaced people per cell, nil for failed runs
	Summary          string            `json:"impact_summary,omitempty"`
	Bands            []BandStat        `json:"bands,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type BandStat struct {
	Band       int     `json:"band"`
	Cells      int     `json:"cells"`
	Exposed    float64 `json:"exposed"`
	Fatalities float64 `json:"fatalities"`
	Displaced  float64 `json:"displaced"`
}

// NewAssessment records a successful engine run.
func NewAssessment(id, label, source string, in impact.Input, res *impact.Result, includeDisplaced bool) *Assessment {
	a := &Assessment{
		ID:               id,
		Label:            label,
		Source:           source,
		Hazard:           in.HazardName,
		Exposure:         in.ExposureName,
		Status:           StatusComplete,
		Population:       res.Population,
		Fatalities:       res.Fatalities,
		Displaced:        res.Displaced,
		IncludeDisplaced: includeDisplaced,
		GeoReference:     res.GeoReference,
		Grid:             res.Grid,
		Summary:          res.ImpactSummary,
		CreatedAt:        time.Now().UTC(),
	}
	for _, b := range res.Bands {
		a.Bands = append(a.Bands, BandStat(b))
	}
	return a
}

// FailedAssessment records a run that did not produce a result.
func FailedAssessment(id, label, source, hazard, exposure string, err error) *Assessment {
	return &Assessment{
		ID:        id,
		Label:     label,
		Source:    source,
		Hazard:    hazard,
		Exposure:  exposure,
		Status:    StatusFailed,
		Error:     err.Error(),
		CreatedAt: time.Now().UTC(),
	}
}
