package report

import (
	"fmt"
	"strconv"
	"strings"

	"vettoo/internal/dataset"
	"vettoo/pkg/contracts/domain"
)

// RedactionMarker replaces counts suppressed for disclosure control.
const RedactionMarker = "-"

// TotalsLabel labels the grand-total row of the detailed display table.
const TotalsLabel = "Total of selected items"

// ShortenLabel shortens a period column name for display: the trimmed part
// after the first comma, or the whole name when there is no comma.
func ShortenLabel(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[i+1:])
	}
	return name
}

// LatestPeriodLabel returns the shortened label of the last period column,
// or "" when none are selected. Feeds the source citation.
func LatestPeriodLabel(periods []dataset.PeriodColumn) string {
	if len(periods) == 0 {
		return ""
	}
	return ShortenLabel(periods[len(periods)-1].Name)
}

// SourceCitation builds the NCVER attribution line shown with every report.
func SourceCitation(latestPeriod string) string {
	return fmt.Sprintf(
		"NCVER, Apprentices and trainees – %s DataBuilder, Contract status by 12 month series – South Australia",
		latestPeriod)
}

// ChartSeries reshapes a view into long form for a multi-series line chart:
// one point per (row, period) pair, grouped by the values of groupColumn
// (qualification in detailed mode, training package in aggregate mode).
func ChartSeries(t *dataset.Table, periods []dataset.PeriodColumn, groupColumn string) []domain.ChartPoint {
	groupCol := t.ColumnIndex(groupColumn)
	if groupCol < 0 || len(periods) == 0 {
		return nil
	}
	points := make([]domain.ChartPoint, 0, len(t.Rows)*len(periods))
	for i := range t.Rows {
		group := t.Text(i, groupCol)
		for _, pc := range periods {
			points = append(points, domain.ChartPoint{
				Group:  group,
				Period: ShortenLabel(pc.Name),
				Value:  t.Value(i, pc.Index),
			})
		}
	}
	return points
}

// DisplayOptions controls the final table rendering.
type DisplayOptions struct {
	// IncludeTotals appends the grand-total row. Only the detailed view
	// carries one; aggregated rows are already package totals.
	IncludeTotals bool
	// Round applies bucket rounding and small-cell redaction to period
	// cells. Totals are summed raw first, then rounded once.
	Round  bool
	Bucket int
}

// BuildDisplayTable renders a view into its final tabular form: identifier
// columns in table order, selected period columns relabeled, and optionally
// a grand-total row.
func BuildDisplayTable(t *dataset.Table, periods []dataset.PeriodColumn, opts DisplayOptions) domain.DisplayTable {
	if opts.Bucket <= 0 {
		opts.Bucket = DefaultBucket
	}

	selected := make(map[int]bool, len(periods))
	for _, pc := range periods {
		selected[pc.Index] = true
	}
	allPeriods := make(map[int]bool)
	for _, pc := range t.PeriodColumns() {
		allPeriods[pc.Index] = true
	}

	// Column c survives unless it is a period column outside the year range.
	var headers []string
	var cols []int
	for c, name := range t.Columns {
		if allPeriods[c] && !selected[c] {
			continue
		}
		if selected[c] {
			name = ShortenLabel(name)
		}
		headers = append(headers, name)
		cols = append(cols, c)
	}

	rows := make([][]string, 0, len(t.Rows)+1)
	for i := range t.Rows {
		row := make([]string, 0, len(cols))
		for _, c := range cols {
			row = append(row, formatCell(t, i, c, selected[c], opts))
		}
		rows = append(rows, row)
	}

	if opts.IncludeTotals && len(t.Rows) > 0 {
		rows = append(rows, totalsRow(t, periods, cols, selected, opts))
	}
	return domain.DisplayTable{Headers: headers, Rows: rows}
}

func totalsRow(t *dataset.Table, periods []dataset.PeriodColumn, cols []int, selected map[int]bool, opts DisplayOptions) []string {
	totals := Totals(t, periods)
	byIndex := make(map[int]float64, len(periods))
	for p, pc := range periods {
		byIndex[pc.Index] = totals[p]
	}

	labelCol := t.ColumnIndex(dataset.ColQualification)
	row := make([]string, 0, len(cols))
	for _, c := range cols {
		switch {
		case c == labelCol, labelCol < 0 && len(row) == 0:
			row = append(row, TotalsLabel)
		case selected[c]:
			row = append(row, formatCount(byIndex[c], opts))
		default:
			row = append(row, "")
		}
	}
	return row
}

func formatCell(t *dataset.Table, row, col int, isPeriod bool, opts DisplayOptions) string {
	if isPeriod {
		return formatCount(t.Value(row, col), opts)
	}
	cell := t.Rows[row][col]
	if cell.Numeric && !cell.Missing && cell.Text == "" {
		return formatNumber(cell.Number)
	}
	return cell.Text
}

func formatCount(raw float64, opts DisplayOptions) string {
	if !opts.Round {
		return formatNumber(raw)
	}
	if Redacted(raw, opts.Bucket) {
		return RedactionMarker
	}
	return formatNumber(RoundToBucket(raw, opts.Bucket))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildMetadata assembles the ordered provenance record included with every
// export. Wording mirrors the dashboard: "All aligned qualifications" when
// packages are selected without narrowing qualifications.
func BuildMetadata(sel domain.Selection, latestPeriod string) []domain.MetadataEntry {
	qualifications := "None"
	switch {
	case len(sel.Qualifications) > 0:
		qualifications = strings.Join(sel.Qualifications, ", ")
	case len(sel.Packages) > 0:
		qualifications = "All aligned qualifications"
	}

	packages := "None"
	if len(sel.Packages) > 0 {
		packages = strings.Join(sel.Packages, ", ")
	}

	return []domain.MetadataEntry{
		{Description: "Source", Value: SourceCitation(latestPeriod)},
		{Description: "Training contract status", Value: string(sel.Status)},
		{Description: "Training packages", Value: packages},
		{Description: "Qualifications", Value: qualifications},
		{Description: "Years", Value: formatYearRange(sel.YearFrom, sel.YearTo)},
	}
}

func formatYearRange(from, to int) string {
	switch {
	case from == 0 && to == 0:
		return "All years"
	case from == 0:
		return fmt.Sprintf("Up to %d", to)
	case to == 0:
		return fmt.Sprintf("%d onwards", from)
	default:
		return fmt.Sprintf("%d-%d", from, to)
	}
}
