// Package http exposes the dashboard API over chi: status/package/
// qualification listings backing the selectors, the report endpoint
// returning chart series plus display table, and the two-sheet workbook
// download. Errors render as RFC 7807 problem documents.
package http
