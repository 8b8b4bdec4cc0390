package http

import (
	"context"
	"io"

	"vettoo/pkg/contracts/domain"
)

// ReportService is the transport-facing contract of the report pipeline.
type ReportService interface {
	Statuses(ctx context.Context) []string
	Packages(ctx context.Context, status domain.Status) ([]string, error)
	Qualifications(ctx context.Context, status domain.Status, packages []string) ([]string, error)
	Compute(ctx context.Context, sel domain.Selection) (*domain.Report, error)
	Export(ctx context.Context, sel domain.Selection, w io.Writer) error
	ExportFilename(sel domain.Selection) string
	WorkbookPath() string
}
