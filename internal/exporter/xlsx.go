package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"vettoo/pkg/contracts/domain"
)

// Sheet names of the export workbook. The download contract is exactly
// these two sheets.
const (
	DataSheet     = "Data"
	MetadataSheet = "Metadata"
)

// Exporter writes report workbooks.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// Write serializes the report to w as an xlsx workbook. Numeric cells are
// written as numbers so spreadsheet tools treat them arithmetically; the
// redaction marker and identifiers stay text.
func (e *Exporter) Write(w io.Writer, report *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		return fmt.Errorf("create data sheet: %w", err)
	}
	if err := writeDataSheet(f, report.Table); err != nil {
		return err
	}

	if _, err := f.NewSheet(MetadataSheet); err != nil {
		return fmt.Errorf("create metadata sheet: %w", err)
	}
	if err := writeMetadataSheet(f, report.Metadata); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	e.logger.Debug("report exported",
		slog.String("status", string(report.Selection.Status)),
		slog.Int("rows", len(report.Table.Rows)),
		slog.Int("columns", len(report.Table.Headers)))
	return nil
}

func writeDataSheet(f *excelize.File, table domain.DisplayTable) error {
	for c, header := range table.Headers {
		if err := setCell(f, DataSheet, c, 0, header); err != nil {
			return err
		}
	}
	for r, row := range table.Rows {
		for c, value := range row {
			if err := setCell(f, DataSheet, c, r+1, cellValue(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMetadataSheet(f *excelize.File, metadata []domain.MetadataEntry) error {
	if err := setCell(f, MetadataSheet, 0, 0, "Description"); err != nil {
		return err
	}
	if err := setCell(f, MetadataSheet, 1, 0, "Value"); err != nil {
		return err
	}
	for r, entry := range metadata {
		if err := setCell(f, MetadataSheet, 0, r+1, entry.Description); err != nil {
			return err
		}
		if err := setCell(f, MetadataSheet, 1, r+1, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("cell coordinates (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// cellValue converts a display string back to a number where possible so
// the workbook carries real numeric cells.
func cellValue(s string) any {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
