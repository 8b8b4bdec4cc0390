package report

import (
	"math"
	"sort"

	"vettoo/internal/dataset"
)

// DefaultBucket is the rounding base used for small-cell disclosure control.
const DefaultBucket = 5

// FilterByPackages returns the rows whose Training Packages value is in
// packages. An empty selection is the identity, not "select none".
func FilterByPackages(t *dataset.Table, packages []string) *dataset.Table {
	return filterByColumn(t, dataset.ColPackage, packages)
}

// FilterByQualifications returns the rows whose Latest Qualification value
// is in qualifications. An empty selection is the identity.
func FilterByQualifications(t *dataset.Table, qualifications []string) *dataset.Table {
	return filterByColumn(t, dataset.ColQualification, qualifications)
}

func filterByColumn(t *dataset.Table, column string, wanted []string) *dataset.Table {
	if len(wanted) == 0 {
		return t
	}
	col := t.ColumnIndex(column)
	if col < 0 {
		return t.Derive(nil)
	}
	set := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		set[w] = struct{}{}
	}
	var rows []dataset.Row
	for i, row := range t.Rows {
		if _, ok := set[t.Text(i, col)]; ok {
			rows = append(rows, row)
		}
	}
	return t.Derive(rows)
}

// AvailableQualifications returns the sorted distinct qualification names
// reachable from the package selection; with no packages selected it covers
// the whole table. This is what keeps the qualification selector consistent
// with the package selector.
func AvailableQualifications(t *dataset.Table, packages []string) []string {
	sub := FilterByPackages(t, packages)
	return distinctColumn(sub, dataset.ColQualification)
}

// AvailablePackages returns the sorted distinct training package names.
func AvailablePackages(t *dataset.Table) []string {
	return distinctColumn(t, dataset.ColPackage)
}

func distinctColumn(t *dataset.Table, column string) []string {
	col := t.ColumnIndex(column)
	if col < 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	for i := range t.Rows {
		name := t.Text(i, col)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectPeriodColumns returns the table's period columns whose year falls in
// the inclusive [from, to] range, in table order. A zero bound is open on
// that side. An empty result is valid; callers render an empty chart and
// table rather than failing.
func SelectPeriodColumns(t *dataset.Table, from, to int) []dataset.PeriodColumn {
	var cols []dataset.PeriodColumn
	for _, pc := range t.PeriodColumns() {
		if from != 0 && pc.Year < from {
			continue
		}
		if to != 0 && pc.Year > to {
			continue
		}
		cols = append(cols, pc)
	}
	return cols
}

// AggregateByPackage groups the view by Training Packages and sums each
// period column per group, missing cells counting as 0. The result has one
// row per distinct package, sorted by package name, with columns
// [Training Packages, periods...]. The returned period columns are the
// input ones re-indexed against the aggregated layout; the input indices
// point into t and must not be used against the result.
func AggregateByPackage(t *dataset.Table, periods []dataset.PeriodColumn) (*dataset.Table, []dataset.PeriodColumn) {
	pkgCol := t.ColumnIndex(dataset.ColPackage)

	sums := make(map[string][]float64)
	var order []string
	for i := range t.Rows {
		pkg := t.Text(i, pkgCol)
		if _, ok := sums[pkg]; !ok {
			sums[pkg] = make([]float64, len(periods))
			order = append(order, pkg)
		}
		for p, pc := range periods {
			sums[pkg][p] += t.Value(i, pc.Index)
		}
	}
	sort.Strings(order)

	columns := make([]string, 0, len(periods)+1)
	columns = append(columns, dataset.ColPackage)
	for _, pc := range periods {
		columns = append(columns, pc.Name)
	}

	rows := make([]dataset.Row, 0, len(order))
	for _, pkg := range order {
		row := make(dataset.Row, 0, len(columns))
		row = append(row, dataset.TextCell(pkg))
		for _, v := range sums[pkg] {
			row = append(row, dataset.NumberCell(v))
		}
		rows = append(rows, row)
	}

	remapped := make([]dataset.PeriodColumn, len(periods))
	for p, pc := range periods {
		remapped[p] = dataset.PeriodColumn{Name: pc.Name, Year: pc.Year, Index: p + 1}
	}
	return dataset.NewTable(columns, rows), remapped
}

// Totals sums each period column across all rows of the view, from raw
// values. The grand-total row of the detailed display path is built from
// these sums and rounded once, never summed from rounded cells.
func Totals(t *dataset.Table, periods []dataset.PeriodColumn) []float64 {
	totals := make([]float64, len(periods))
	for i := range t.Rows {
		for p, pc := range periods {
			totals[p] += t.Value(i, pc.Index)
		}
	}
	return totals
}

// RoundToBucket rounds v half away from zero to the nearest multiple of
// bucket. math.Round's half-away-from-zero rule is the documented choice;
// the source system was ambiguous at exact .5 boundaries.
func RoundToBucket(v float64, bucket int) float64 {
	if bucket <= 0 {
		return v
	}
	b := float64(bucket)
	return math.Round(v/b) * b
}

// Redacted reports whether a raw value must be suppressed: it rounds to zero
// without being a true zero. True zeros stay visible as 0.
func Redacted(raw float64, bucket int) bool {
	return raw != 0 && RoundToBucket(raw, bucket) == 0
}
