package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vettoo/internal/dataset"
	"vettoo/pkg/contracts/domain"
)

func TestShortenLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"comma", "Apprentices, 2023_Q4", "2023_Q4"},
		{"no comma", "2023_Q4", "2023_Q4"},
		{"first comma only", "Apprentices, trainees, 2023", "trainees, 2023"},
		{"whitespace trimmed", "Apprentices,   2023", "2023"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortenLabel(tt.in))
		})
	}
}

func TestChartSeries(t *testing.T) {
	table := testTable()
	periods := SelectPeriodColumns(table, 2022, 2023)

	points := ChartSeries(table, periods, dataset.ColQualification)
	require.Len(t, points, 8, "one point per (row, period) pair")

	assert.Equal(t, domain.ChartPoint{Group: "Cert III Electrotechnology", Period: "2022", Value: 110}, points[0])
	assert.Equal(t, domain.ChartPoint{Group: "Cert III Electrotechnology", Period: "2023", Value: 120}, points[1])

	// Missing cells chart as zero.
	assert.Equal(t, domain.ChartPoint{Group: "Cert III Carpentry", Period: "2022", Value: 0}, points[6])
}

func TestChartSeriesEmptyPeriods(t *testing.T) {
	table := testTable()
	assert.Empty(t, ChartSeries(table, nil, dataset.ColQualification))
}

func TestBuildDisplayTableDetailed(t *testing.T) {
	table := testTable()
	periods := SelectPeriodColumns(table, 2022, 2023)

	got := BuildDisplayTable(table, periods, DisplayOptions{IncludeTotals: true})
	assert.Equal(t, []string{
		dataset.ColQualification, dataset.ColPackage, dataset.ColTDV, "2022", "2023",
	}, got.Headers, "period labels shortened, out-of-range years dropped")

	require.Len(t, got.Rows, 5, "four records plus the totals row")
	assert.Equal(t, []string{"Cert III Electrotechnology", "Electrical", "4", "110", "120"}, got.Rows[0])

	totals := got.Rows[4]
	assert.Equal(t, TotalsLabel, totals[0])
	assert.Equal(t, "", totals[1])
	assert.Equal(t, "", totals[2])
	assert.Equal(t, "177", totals[3])
	assert.Equal(t, "255", totals[4])
}

func TestBuildDisplayTableRoundsTotalsOnce(t *testing.T) {
	// Two rows with values [10, 20] and [5, 0]: the totals are summed raw
	// and rounded after, not summed from rounded cells.
	table := dataset.NewTable(
		[]string{dataset.ColQualification, "Apprentices, 2022", "Apprentices, 2023"},
		[]dataset.Row{
			{dataset.TextCell("A"), dataset.NumberCell(10), dataset.NumberCell(20)},
			{dataset.TextCell("B"), dataset.NumberCell(5), dataset.NumberCell(0)},
		},
	)
	periods := SelectPeriodColumns(table, 0, 0)

	raw := BuildDisplayTable(table, periods, DisplayOptions{IncludeTotals: true})
	assert.Equal(t, "15", raw.Rows[2][1])
	assert.Equal(t, "20", raw.Rows[2][2], "totals row value is 35 over both columns: 15 + 20")

	rounded := BuildDisplayTable(table, periods, DisplayOptions{IncludeTotals: true, Round: true, Bucket: 5})
	assert.Equal(t, "15", rounded.Rows[2][1])
	assert.Equal(t, "20", rounded.Rows[2][2])
}

func TestBuildDisplayTableRedaction(t *testing.T) {
	table := dataset.NewTable(
		[]string{dataset.ColQualification, "Apprentices, 2023"},
		[]dataset.Row{
			{dataset.TextCell("A"), dataset.NumberCell(2)},
			{dataset.TextCell("B"), dataset.NumberCell(0)},
			{dataset.TextCell("C"), dataset.NumberCell(13)},
		},
	)
	periods := SelectPeriodColumns(table, 0, 0)

	got := BuildDisplayTable(table, periods, DisplayOptions{Round: true, Bucket: 5})
	assert.Equal(t, RedactionMarker, got.Rows[0][1], "2 rounds to 0 but is not a true zero")
	assert.Equal(t, "0", got.Rows[1][1], "true zero stays 0")
	assert.Equal(t, "15", got.Rows[2][1])
}

func TestBuildDisplayTableEmptyPeriods(t *testing.T) {
	table := testTable()
	got := BuildDisplayTable(table, nil, DisplayOptions{IncludeTotals: true})

	assert.Equal(t, []string{dataset.ColQualification, dataset.ColPackage, dataset.ColTDV}, got.Headers)
	require.Len(t, got.Rows, 5)
	assert.Equal(t, TotalsLabel, got.Rows[4][0])
}

func TestBuildDisplayTableAggregated(t *testing.T) {
	table := testTable()
	periods := SelectPeriodColumns(table, 0, 0)
	agg, aggPeriods := AggregateByPackage(table, periods)

	got := BuildDisplayTable(agg, aggPeriods, DisplayOptions{IncludeTotals: false})
	assert.Equal(t, []string{dataset.ColPackage, "2021", "2022", "2023"}, got.Headers)
	require.Len(t, got.Rows, 2, "aggregated views never carry a totals row")

	points := ChartSeries(agg, aggPeriods, dataset.ColPackage)
	require.Len(t, points, 6)
	assert.Equal(t, 110.0, points[3].Value, "aggregated chart reads the summed cells, not zeros")
}

func TestLatestPeriodLabel(t *testing.T) {
	table := testTable()
	assert.Equal(t, "2023", LatestPeriodLabel(SelectPeriodColumns(table, 0, 0)))
	assert.Equal(t, "", LatestPeriodLabel(nil))
}

func TestSourceCitation(t *testing.T) {
	got := SourceCitation("2023")
	assert.Contains(t, got, "NCVER, Apprentices and trainees")
	assert.Contains(t, got, "2023 DataBuilder")
	assert.Contains(t, got, "South Australia")
}

func TestBuildMetadata(t *testing.T) {
	base := domain.Selection{Status: domain.StatusCompletions}

	t.Run("no selection", func(t *testing.T) {
		entries := BuildMetadata(base, "2023")
		require.Len(t, entries, 5)
		assert.Equal(t, "Source", entries[0].Description)
		assert.Equal(t, "Completions", entries[1].Value)
		assert.Equal(t, "None", entries[2].Value)
		assert.Equal(t, "None", entries[3].Value)
		assert.Equal(t, "All years", entries[4].Value)
	})

	t.Run("packages without qualifications default to all aligned", func(t *testing.T) {
		sel := base
		sel.Packages = []string{"Electrical"}
		entries := BuildMetadata(sel, "2023")
		assert.Equal(t, "Electrical", entries[2].Value)
		assert.Equal(t, "All aligned qualifications", entries[3].Value)
	})

	t.Run("explicit qualifications listed", func(t *testing.T) {
		sel := base
		sel.Packages = []string{"Electrical", "Construction"}
		sel.Qualifications = []string{"Cert III Plumbing"}
		entries := BuildMetadata(sel, "2023")
		assert.Equal(t, "Electrical, Construction", entries[2].Value)
		assert.Equal(t, "Cert III Plumbing", entries[3].Value)
	})

	t.Run("year range variants", func(t *testing.T) {
		sel := base
		sel.YearFrom, sel.YearTo = 2019, 2023
		assert.Equal(t, "2019-2023", BuildMetadata(sel, "2023")[4].Value)

		sel.YearFrom, sel.YearTo = 2019, 0
		assert.Equal(t, "2019 onwards", BuildMetadata(sel, "2023")[4].Value)

		sel.YearFrom, sel.YearTo = 0, 2021
		assert.Equal(t, "Up to 2021", BuildMetadata(sel, "2023")[4].Value)
	})
}

// The end-to-end shape of one interaction: Completions, Electrical package,
// qualifications defaulting to all aligned, two period columns.
func TestDetailedReportScenario(t *testing.T) {
	table := testTable()

	view := FilterByPackages(table, []string{"Electrical"})
	view = FilterByQualifications(view, nil)
	periods := SelectPeriodColumns(view, 2022, 2023)

	display := BuildDisplayTable(view, periods, DisplayOptions{IncludeTotals: true})
	require.Len(t, display.Rows, 3, "two matching records plus totals")
	assert.Equal(t, "2022", display.Headers[3])
	assert.Equal(t, "2023", display.Headers[4])

	chart := ChartSeries(view, periods, dataset.ColQualification)
	assert.Len(t, chart, 4, "N rows times 2 periods")
}
