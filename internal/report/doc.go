// Package report implements the dashboard's filter/aggregate engine and its
// presentation adapter. Everything here is a pure function over immutable
// dataset tables: filters narrow rows, the year selector narrows period
// columns, aggregation rolls qualification rows up to training packages, and
// the presentation side reshapes the result into a chart series, a display
// table with an optional grand-total row, and an export metadata record.
//
// Rounding for disclosure control rounds half away from zero to the nearest
// multiple of the bucket size; a non-zero count that rounds to zero is
// replaced by a redaction marker so small cells cannot be recovered.
package report
