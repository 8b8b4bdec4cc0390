package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"vettoo/pkg/contracts/domain"
)

// DefaultWorkbookPattern matches the merged NCVER qualifications extract.
const DefaultWorkbookPattern = "TP_Qualifications_Merged"

// StatusTotalsSheet holds the source's pre-aggregated one-row-per-status
// table, shown when no package or qualification filter is active. ColStatus
// is its label column.
const (
	StatusTotalsSheet = "Status_Totals"
	ColStatus         = "Status"
)

// statusSheets maps a contract status to its workbook sheet.
var statusSheets = map[domain.Status]string{
	domain.StatusCommencements: "Qual_Commenced",
	domain.StatusInTraining:    "Qual_In-training",
	domain.StatusCompletions:   "Qual_Completed",
}

// Store holds the loaded status tables for one workbook. It is immutable
// after Open returns and safe for concurrent readers.
type Store struct {
	path   string
	logger *slog.Logger

	mu           sync.RWMutex
	tables       map[domain.Status]*Table
	statusTotals *Table
}

// NewStoreFromTables builds a store directly from in-memory tables. The
// loader is the production path; this exists for callers that already hold
// tables, such as tests and fixtures.
func NewStoreFromTables(path string, tables map[domain.Status]*Table, statusTotals *Table, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:         path,
		logger:       logger.With(slog.String("component", "dataset")),
		tables:       tables,
		statusTotals: statusTotals,
	}
}

// FindWorkbook resolves the newest .xlsx file in dir whose name contains
// pattern. Missing source data is fatal at load time, so no file is an error.
func FindWorkbook(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+pattern+"*.xlsx"))
	if err != nil {
		return "", fmt.Errorf("scan data dir %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no file matching *%s*.xlsx in %s", pattern, dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Open loads every status sheet plus the status-totals sheet of the workbook
// at path. The three status sheets are independent, so they load
// concurrently, each from its own workbook handle.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger.With(slog.String("component", "dataset")),
		tables: make(map[domain.Status]*Table, len(statusSheets)),
	}

	g, ctx := errgroup.WithContext(ctx)
	for status, sheet := range statusSheets {
		status, sheet := status, sheet
		g.Go(func() error {
			table, err := loadSheet(path, sheet)
			if err != nil {
				return fmt.Errorf("load status %s: %w", status, err)
			}
			s.mu.Lock()
			s.tables[status] = table
			s.mu.Unlock()
			s.logger.InfoContext(ctx, "loaded status sheet",
				slog.String("status", string(status)),
				slog.String("sheet", sheet),
				slog.Int("rows", len(table.Rows)),
				slog.Int("period_columns", len(table.PeriodColumns())))
			return nil
		})
	}
	g.Go(func() error {
		table, err := loadSheet(path, StatusTotalsSheet)
		if err != nil {
			return fmt.Errorf("load status totals: %w", err)
		}
		s.mu.Lock()
		s.statusTotals = table
		s.mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the resolved workbook path.
func (s *Store) Path() string {
	return s.path
}

// Status returns the loaded table for one contract status.
func (s *Store) Status(status domain.Status) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[status]
	if !ok {
		return nil, fmt.Errorf("no table loaded for status %q", status)
	}
	return table, nil
}

// StatusTotals returns the pre-aggregated one-row-per-status table.
func (s *Store) StatusTotals() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusTotals
}

// loadSheet reads one sheet of the workbook at path into a Table. The first
// row is the header; trailing blank rows are dropped.
func loadSheet(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("expected sheet %q not in workbook: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.TrimSpace(h)
	}

	var records []Row
	for _, raw := range rows[1:] {
		if blankRow(raw) {
			continue
		}
		rec := make(Row, len(columns))
		for c := range columns {
			var cellText string
			if c < len(raw) {
				cellText = strings.TrimSpace(raw[c])
			}
			rec[c] = parseCell(cellText)
		}
		records = append(records, rec)
	}
	return NewTable(columns, records), nil
}

// parseCell turns a raw sheet value into a Cell. Numbers may carry thousands
// separators in the source extract.
func parseCell(s string) Cell {
	if s == "" {
		return Cell{Numeric: true, Missing: true}
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return TextCell(s)
	}
	c := NumberCell(n)
	c.Text = s
	return c
}

func blankRow(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
