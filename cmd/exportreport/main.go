// Command exportreport computes one report from the command line and writes
// the two-sheet workbook, without running the HTTP service.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"vettoo/internal/dataset"
	"vettoo/internal/report"
	"vettoo/internal/services"
	"vettoo/pkg/contracts/domain"
)

func main() {
	dataDir := flag.String("data", "Data", "directory holding the source workbook")
	pattern := flag.String("pattern", dataset.DefaultWorkbookPattern, "workbook filename pattern")
	status := flag.String("status", string(domain.StatusCommencements), "training contract status")
	var packages, qualifications stringList
	flag.Var(&packages, "packages", "training package to include (repeatable)")
	flag.Var(&qualifications, "qualifications", "qualification to include (repeatable)")
	from := flag.Int("from", 0, "first year of the range (0 = open)")
	to := flag.Int("to", 0, "last year of the range (0 = open)")
	aggregate := flag.Bool("aggregate", false, "aggregate by training package")
	round := flag.Bool("round", false, "round to nearest 5 and redact small cells")
	bucket := flag.Int("bucket", report.DefaultBucket, "rounding bucket")
	out := flag.String("out", "", "output file (defaults to <status>_data.xlsx)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	st, err := domain.ParseStatus(*status)
	if err != nil {
		logger.Error("invalid status", "error", err)
		os.Exit(1)
	}

	workbook, err := dataset.FindWorkbook(*dataDir, *pattern)
	if err != nil {
		logger.Error("workbook not found", "error", err)
		os.Exit(1)
	}
	store, err := dataset.Open(ctx, workbook, logger)
	if err != nil {
		logger.Error("workbook load failed", "workbook", workbook, "error", err)
		os.Exit(1)
	}

	sel := domain.Selection{
		Status:         st,
		Packages:       packages,
		Qualifications: qualifications,
		YearFrom:       *from,
		YearTo:         *to,
		Aggregate:      *aggregate,
		Round:          *round,
	}

	svc := services.NewReportService(store, *bucket, logger)
	path := *out
	if path == "" {
		path = svc.ExportFilename(sel)
	}

	f, err := os.Create(path)
	if err != nil {
		logger.Error("create output file", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := svc.Export(ctx, sel, f); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("report exported", "path", path, "workbook", workbook)
}

// stringList accumulates repeated flag values. Names can contain commas, so
// there is no single-flag list syntax.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ", ") }

func (l *stringList) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*l = append(*l, v)
	}
	return nil
}
