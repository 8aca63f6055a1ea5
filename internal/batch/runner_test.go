package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/impact"
	"github.com/mr1hm/go-quake-impact/internal/models"
)

func TestRunnerRun(t *testing.T) {
	data := t.TempDir()
	layers(t, data)
	reports := filepath.Join(t.TempDir(), "out")
	repo := testRepo(t)

	r := NewRunner(impact.DefaultParams(), repo, reports)
	s := Scenario{Label: "Padang 2009", Source: "padang.txt", Path: data, Hazard: "shake.asc", Exposure: "people.asc"}

	res, err := r.Run(context.Background(), "run-1", s)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), res.Population)
	assert.Equal(t, int64(0), res.Fatalities)
	assert.Equal(t, int64(6000), res.Displaced)

	out := r.OutputPaths(s)
	assert.Equal(t, filepath.Join(reports, "Padang_2009.asc"), out.Grid)

	g, ref, err := grid.ReadASCFile(out.Grid)
	require.NoError(t, err)
	assert.True(t, g.SameShape(res.Grid))
	assert.Equal(t, res.GeoReference, ref)

	table, err := os.ReadFile(out.Table)
	require.NoError(t, err)
	assert.Contains(t, string(table), "In the event of Padang 2009 how many people might die or be displaced?")

	wb, err := xlsx.OpenFile(out.Workbook)
	require.NoError(t, err)
	bands, ok := wb.Sheet["Bands"]
	require.True(t, ok)
	require.Len(t, bands.Rows, 1+len(res.Bands))
	assert.Equal(t, "MMI", bands.Rows[0].Cells[0].String())
	summary, ok := wb.Sheet["Summary"]
	require.True(t, ok)
	assert.Equal(t, "Padang 2009", summary.Rows[0].Cells[1].String())
	displaced, err := summary.Rows[4].Cells[1].Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(6000), displaced)

	stored, err := repo.GetByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, stored.Status)
	assert.Equal(t, "padang.txt", stored.Source)
	assert.Equal(t, int64(6000), stored.Displaced)
	require.NotNil(t, stored.Grid)
	assert.Equal(t, 6, stored.Grid.Len())
}

func TestRunnerExtent(t *testing.T) {
	data := t.TempDir()
	layers(t, data)

	// grids span x 100..101.5, y -2..-1; keep the left column only
	r := NewRunner(impact.DefaultParams(), nil, t.TempDir())
	s := Scenario{Label: "west", Path: data, Hazard: "shake.asc", Exposure: "people.asc", Extent: "100, -2, 100.4, -1"}

	res, err := r.Run(context.Background(), "west", s)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Grid.Rows())
	assert.Equal(t, 1, res.Grid.Cols())
	assert.Equal(t, int64(2000), res.Population)
}

func TestRunnerFailures(t *testing.T) {
	data := t.TempDir()
	layers(t, data)
	writeASC(t, filepath.Join(data, "small.asc"), 1, 3, 1000)

	tests := []struct {
		name     string
		scenario Scenario
	}{
		{"missing hazard file", Scenario{Label: "a", Path: data, Hazard: "nope.asc", Exposure: "people.asc"}},
		{"missing exposure key", Scenario{Label: "b", Path: data, Hazard: "shake.asc"}},
		{"unknown function", Scenario{Label: "c", Path: data, Hazard: "shake.asc", Exposure: "people.asc", Function: "Other"}},
		{"shape mismatch", Scenario{Label: "d", Path: data, Hazard: "shake.asc", Exposure: "small.asc"}},
		{"extent outside grid", Scenario{Label: "e", Path: data, Hazard: "shake.asc", Exposure: "people.asc", Extent: "0, 0, 1, 1"}},
	}

	repo := testRepo(t)
	r := NewRunner(impact.DefaultParams(), repo, t.TempDir())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), tt.name, tt.scenario)
			require.Error(t, err)

			stored, err := repo.GetByID(context.Background(), tt.name)
			require.NoError(t, err)
			assert.Equal(t, models.StatusFailed, stored.Status)
			assert.NotEmpty(t, stored.Error)
		})
	}
}

func TestRunnerOnComplete(t *testing.T) {
	data := t.TempDir()
	layers(t, data)

	var got []*models.Assessment
	r := NewRunner(impact.DefaultParams(), nil, t.TempDir())
	r.OnComplete(func(a *models.Assessment) { got = append(got, a) })

	ok := Scenario{Label: "ok", Path: data, Hazard: "shake.asc", Exposure: "people.asc"}
	bad := Scenario{Label: "bad", Path: data, Hazard: "missing.asc", Exposure: "people.asc"}

	_, err := r.Run(context.Background(), "ok-1", ok)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), "bad-1", bad)
	require.Error(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "ok-1", got[0].ID)
	assert.Equal(t, models.StatusComplete, got[0].Status)
	assert.Equal(t, int64(6000), got[0].Displaced)
	assert.Equal(t, "bad-1", got[1].ID)
	assert.Equal(t, models.StatusFailed, got[1].Status)
}

func TestRunnerOutputPathsStayInReportDir(t *testing.T) {
	reports := t.TempDir()
	r := NewRunner(impact.DefaultParams(), nil, reports)

	for _, label := range []string{"../escape", "a/../../b", `..\x`, ".."} {
		out := r.OutputPaths(Scenario{Label: label})
		for _, p := range []string{out.Grid, out.Table, out.Workbook} {
			assert.Equal(t, reports, filepath.Dir(p), "label %q", label)
		}
	}
}
