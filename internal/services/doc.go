// Package services orchestrates the report pipeline: it resolves the loaded
// status table for a selection, runs the filter/aggregate engine and the
// presentation adapter, and hands exports to the workbook writer. Services
// hold no mutable state beyond the immutable dataset store; every call
// recomputes from scratch.
package services
