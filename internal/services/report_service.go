package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"vettoo/internal/dataset"
	"vettoo/internal/exporter"
	"vettoo/internal/report"
	"vettoo/pkg/contracts/domain"
)

// ReportService computes dashboard reports over the loaded dataset.
type ReportService struct {
	store    *dataset.Store
	exporter *exporter.Exporter
	validate *validator.Validate
	bucket   int
	logger   *slog.Logger
}

// NewReportService creates a report service over an opened dataset store.
func NewReportService(store *dataset.Store, bucket int, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if bucket <= 0 {
		bucket = report.DefaultBucket
	}
	return &ReportService{
		store:    store,
		exporter: exporter.New(logger),
		validate: validator.New(),
		bucket:   bucket,
		logger:   logger.With(slog.String("component", "report_service")),
	}
}

// Statuses returns the selectable training-contract statuses.
func (s *ReportService) Statuses(ctx context.Context) []string {
	statuses := domain.AllStatuses()
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return names
}

// Packages returns the sorted distinct training packages of one status
// sheet.
func (s *ReportService) Packages(ctx context.Context, status domain.Status) ([]string, error) {
	table, err := s.store.Status(status)
	if err != nil {
		return nil, err
	}
	return report.AvailablePackages(table), nil
}

// Qualifications returns the sorted qualifications reachable from the
// package selection, constraining the dependent selector.
func (s *ReportService) Qualifications(ctx context.Context, status domain.Status, packages []string) ([]string, error) {
	table, err := s.store.Status(status)
	if err != nil {
		return nil, err
	}
	return report.AvailableQualifications(table, packages), nil
}

// Compute runs the full filter/aggregate/present pipeline for one
// selection. Empty results are valid and yield an empty chart and table.
func (s *ReportService) Compute(ctx context.Context, sel domain.Selection) (*domain.Report, error) {
	if err := s.validateSelection(sel); err != nil {
		return nil, err
	}

	if !sel.HasFilters() {
		return s.computeStatusTotals(ctx, sel)
	}

	table, err := s.store.Status(sel.Status)
	if err != nil {
		return nil, err
	}

	// Empty qualification selection with packages selected means "all
	// aligned qualifications": the package filter alone already yields
	// exactly those rows.
	view := report.FilterByPackages(table, sel.Packages)
	view = report.FilterByQualifications(view, sel.Qualifications)
	periods := report.SelectPeriodColumns(view, sel.YearFrom, sel.YearTo)

	groupColumn := dataset.ColQualification
	includeTotals := true
	if sel.Aggregate {
		view, periods = report.AggregateByPackage(view, periods)
		groupColumn = dataset.ColPackage
		includeTotals = false
	}

	rep := s.present(sel, view, periods, groupColumn, includeTotals)

	reportsComputed.WithLabelValues(string(sel.Status)).Inc()
	s.logger.InfoContext(ctx, "report computed",
		slog.String("status", string(sel.Status)),
		slog.Int("packages", len(sel.Packages)),
		slog.Int("qualifications", len(sel.Qualifications)),
		slog.Bool("aggregate", sel.Aggregate),
		slog.Int("rows", len(rep.Table.Rows)),
		slog.Int("chart_points", len(rep.Chart)))
	return rep, nil
}

// computeStatusTotals serves the no-selection view from the source's
// pre-aggregated one-row-per-status table.
func (s *ReportService) computeStatusTotals(ctx context.Context, sel domain.Selection) (*domain.Report, error) {
	totals := s.store.StatusTotals()
	if totals == nil {
		return nil, fmt.Errorf("status totals table not loaded")
	}
	periods := report.SelectPeriodColumns(totals, sel.YearFrom, sel.YearTo)
	rep := s.present(sel, totals, periods, dataset.ColStatus, false)

	reportsComputed.WithLabelValues(string(sel.Status)).Inc()
	return rep, nil
}

func (s *ReportService) present(sel domain.Selection, view *dataset.Table, periods []dataset.PeriodColumn, groupColumn string, includeTotals bool) *domain.Report {
	latest := report.LatestPeriodLabel(periods)
	if latest == "" {
		latest = report.LatestPeriodLabel(view.PeriodColumns())
	}
	return &domain.Report{
		Selection: sel,
		Table: report.BuildDisplayTable(view, periods, report.DisplayOptions{
			IncludeTotals: includeTotals,
			Round:         sel.Round,
			Bucket:        s.bucket,
		}),
		Chart:    report.ChartSeries(view, periods, groupColumn),
		Metadata: report.BuildMetadata(sel, latest),
	}
}

// Export computes the report and writes the two-sheet workbook to w.
func (s *ReportService) Export(ctx context.Context, sel domain.Selection, w io.Writer) error {
	rep, err := s.Compute(ctx, sel)
	if err != nil {
		return err
	}
	if err := s.exporter.Write(w, rep); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	reportsExported.WithLabelValues(string(sel.Status)).Inc()
	return nil
}

// ExportFilename derives the download name from the selected status.
func (s *ReportService) ExportFilename(sel domain.Selection) string {
	return sel.Status.FileSlug() + "_data.xlsx"
}

// WorkbookPath reports which workbook is being served, for health output.
func (s *ReportService) WorkbookPath() string {
	return s.store.Path()
}

func (s *ReportService) validateSelection(sel domain.Selection) error {
	if _, err := domain.ParseStatus(string(sel.Status)); err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}
	if err := s.validate.Struct(sel); err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}
	if sel.YearFrom != 0 && sel.YearTo != 0 && sel.YearTo < sel.YearFrom {
		return fmt.Errorf("invalid selection: year range %d-%d is reversed", sel.YearFrom, sel.YearTo)
	}
	return nil
}
