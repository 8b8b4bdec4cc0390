// Package exporter serializes a computed report into the downloadable
// workbook format: a "Data" sheet carrying the display table exactly as
// labeled, and a "Metadata" sheet with one Description/Value row per
// provenance entry.
package exporter
