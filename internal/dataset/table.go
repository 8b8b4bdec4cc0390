package dataset

import (
	"strconv"
	"strings"
)

// Column names of the fixed identifier columns in the source workbook.
const (
	ColQualification = "Latest Qualification"
	ColPackage       = "Training Packages"
	ColTDV           = "TDV"
)

// Cell is one table cell, either text or a numeric count. Empty cells in
// numeric columns are numeric zeros with Missing set, so summation can treat
// them as 0 while formatting can still distinguish them.
type Cell struct {
	Text    string
	Number  float64
	Numeric bool
	Missing bool
}

// TextCell builds a text cell.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Number: f, Numeric: true}
}

// PeriodColumn is a numeric column representing counts for one reporting
// interval, identified by the 4-digit year its name ends in.
type PeriodColumn struct {
	Name  string
	Year  int
	Index int
}

// Table is an immutable rectangular dataset: ordered column names plus rows
// of cells. Callers must not mutate a loaded table; derivations copy.
type Table struct {
	Columns []string
	Rows    []Row

	numeric []bool // per-column, set at load time
}

// Row is one record of a table.
type Row []Cell

// NewTable builds a table from column names and rows, classifying each
// column as numeric when every non-empty cell in it is numeric and at least
// one cell is.
func NewTable(columns []string, rows []Row) *Table {
	numeric := make([]bool, len(columns))
	for c := range columns {
		seen := false
		isNum := true
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			cell := row[c]
			if cell.Missing {
				continue
			}
			if !cell.Numeric {
				isNum = false
				break
			}
			seen = true
		}
		numeric[c] = seen && isNum
	}
	return &Table{Columns: columns, Rows: rows, numeric: numeric}
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsNumeric reports whether the column at index i was classified numeric.
func (t *Table) IsNumeric(i int) bool {
	return i >= 0 && i < len(t.numeric) && t.numeric[i]
}

// PeriodColumns returns the numeric columns whose name ends in a parseable
// 4-digit year, in the order they appear in the table. Numeric identifier
// columns without a year suffix (such as TDV) are excluded.
func (t *Table) PeriodColumns() []PeriodColumn {
	var cols []PeriodColumn
	for i, name := range t.Columns {
		if !t.IsNumeric(i) {
			continue
		}
		year, ok := YearSuffix(name)
		if !ok {
			continue
		}
		cols = append(cols, PeriodColumn{Name: name, Year: year, Index: i})
	}
	return cols
}

// Derive builds a new table sharing this table's column schema but holding
// the given rows. Used by the filter pipeline; the receiver is not modified.
func (t *Table) Derive(rows []Row) *Table {
	return &Table{Columns: t.Columns, Rows: rows, numeric: t.numeric}
}

// Value returns the numeric value of the cell at (row, col), treating
// missing and non-numeric cells as 0.
func (t *Table) Value(row, col int) float64 {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return 0
	}
	cell := t.Rows[row][col]
	if !cell.Numeric || cell.Missing {
		return 0
	}
	return cell.Number
}

// Text returns the text of the cell at (row, col), or "" when out of range.
func (t *Table) Text(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col].Text
}

// YearSuffix extracts the trailing 4-digit year of a period column name,
// e.g. "Apprentices, 12 month series_2023" yields 2023.
func YearSuffix(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if len(name) < 4 {
		return 0, false
	}
	tail := name[len(name)-4:]
	year, err := strconv.Atoi(tail)
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}
