package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterInt(t *testing.T) {
	tests := []struct {
		locale string
		n      int64
		want   string
		sep    string
	}{
		{locale: "id", n: 1234567, want: "1.234.567", sep: "."},
		{locale: "en", n: 1234567, want: "1,234,567", sep: ","},
		{locale: "en", n: 999, want: "999", sep: ","},
		{locale: "id", n: 0, want: "0", sep: "."},
	}
	for _, test := range tests {
		f, err := NewFormatter(test.locale)
		require.NoError(t, err)
		assert.Equal(t, test.want, f.Int(test.n), "%s %d", test.locale, test.n)
		assert.Equal(t, test.sep, f.Separator(), test.locale)
	}

	_, err := NewFormatter("??")
	assert.Error(t, err)
}

func TestNeedsFor(t *testing.T) {
	assert.Equal(t, Needs{
		Rice:          2800,
		DrinkingWater: 17500,
		CleanWater:    67000,
		FamilyKits:    200,
		Toilets:       50,
	}, NeedsFor(1000))

	assert.Equal(t, Needs{Rice: 8, DrinkingWater: 52, CleanWater: 201}, NeedsFor(3))
	assert.Equal(t, Needs{}, NeedsFor(0))
}

func TestDemographics(t *testing.T) {
	d := DefaultDemographics()
	require.NoError(t, d.Validate())

	b := d.Breakdown(10000)
	assert.Equal(t, int64(5000), b.Female)
	assert.Equal(t, int64(5000), b.Male)
	assert.Equal(t, int64(2630), b.Youth)
	assert.Equal(t, int64(780), b.Elder)
	assert.Equal(t, int64(6590), b.Adult)

	d.ElderRatio = 0.2
	assert.Error(t, d.Validate())

	d = DefaultDemographics()
	d.FemaleRatio = 1.2
	assert.Error(t, d.Validate())

	assert.NoError(t, Demographics{}.Validate())
	assert.False(t, Demographics{}.Enabled())
	assert.Equal(t, Breakdown{}, Demographics{}.Breakdown(500))
}

func TestQuestion(t *testing.T) {
	assert.Equal(t,
		"In the event of earthquake how many people might die or be displaced?",
		Question("", "", "die or be displaced"))
	assert.Equal(t,
		"In the event of M7.6 Padang how many residents might die or be displaced?",
		Question("M7.6 Padang", "residents", "die or be displaced"))
}

func figures() Figures {
	return Figures{
		Question:     "In the event of earthquake how many people might die or be displaced?",
		Fatalities:   2000,
		Displaced:    120000,
		Population:   900000,
		Rounding:     1000,
		Needs:        NeedsFor(120000),
		Demographics: DefaultDemographics(),
	}
}

func cellsOf(t Table) []string {
	var out []string
	for _, r := range t.Rows {
		out = append(out, strings.Join(r.Cells, " | "))
	}
	return out
}

func TestSummary(t *testing.T) {
	f, err := NewFormatter("id")
	require.NoError(t, err)

	tbl := Summary(figures(), f)
	rows := cellsOf(tbl)

	assert.Equal(t, figures().Question, rows[0])
	assert.Contains(t, rows, "Fatalities | 2.000")
	assert.Contains(t, rows, "People displaced | 120.000")
	assert.Contains(t, rows, "Rice [kg] | 336.000")
	assert.Contains(t, rows, "Toilets | 6.000")
	assert.Contains(t, rows, "Are there enough victim identification units available for 2.000 people?")
	assert.Contains(t, rows, "Are there enough shelters and relief items available for 120.000 people?")
	assert.Contains(t, rows, "Female | 60.000")
	assert.Contains(t, rows, "Total population: 900.000")
	assert.Contains(t, rows, "Population numbers rounded to nearest 1.000.")

	var headers int
	for _, r := range tbl.Rows {
		if r.Header {
			headers++
		}
	}
	assert.Equal(t, 7, headers)
}

func TestSummaryWithoutDisplacedOrFatalities(t *testing.T) {
	f, err := NewFormatter("en")
	require.NoError(t, err)

	fig := figures()
	fig.Fatalities = 0
	fig.Displaced = 0
	fig.Needs = NeedsFor(0)

	text := Summary(fig, f).String()
	assert.Contains(t, text, "People displaced")
	assert.Contains(t, cellsOf(Summary(fig, f)), "People displaced | 0")
	assert.NotContains(t, text, "victim identification")
	assert.NotContains(t, text, "shelters")
	assert.NotContains(t, text, "Displaced people by group")
	assert.Contains(t, text, "Action Checklist:")
	assert.Contains(t, text, "Total population: 900,000")
}

func TestTableString(t *testing.T) {
	var tbl Table
	tbl.row("intro")
	tbl.header("Needs per week", "Total")
	tbl.row("Rice [kg]", "10")

	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "intro", lines[0])
	assert.Equal(t, "", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Needs per week"))
	assert.True(t, strings.HasPrefix(lines[3], "---"))
	assert.True(t, strings.HasPrefix(lines[4], "Rice [kg]"))
}

func TestLegendNotes(t *testing.T) {
	f, err := NewFormatter("id")
	require.NoError(t, err)
	assert.Equal(t, "Thousand separator is represented by '.'", LegendNotes(f))
}
