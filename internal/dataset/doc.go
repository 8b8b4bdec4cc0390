// Package dataset is the table provider for the dashboard. It resolves the
// newest merged qualifications workbook in the data directory, loads each
// training-contract status sheet into an immutable in-memory Table, and
// classifies year-tagged period columns.
//
// Tables are loaded once at startup and never mutated; every filter and
// aggregation downstream produces a fresh derived table.
package dataset
