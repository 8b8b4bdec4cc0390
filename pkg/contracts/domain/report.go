package domain

import (
	"fmt"
	"strings"
)

// Status identifies which training-contract status sheet is active.
type Status string

const (
	StatusCommencements Status = "Commencements"
	StatusInTraining    Status = "In-training"
	StatusCompletions   Status = "Completions"
)

// AllStatuses lists the selectable statuses in display order.
func AllStatuses() []Status {
	return []Status{StatusCommencements, StatusInTraining, StatusCompletions}
}

// ParseStatus validates a raw status string from the API surface.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// FileSlug returns the status name in a form safe for file names.
func (s Status) FileSlug() string {
	return strings.ReplaceAll(string(s), " ", "_")
}

// Selection is the immutable filter tuple for one report computation.
// Zero YearFrom/YearTo means the bound is open on that side.
type Selection struct {
	Status         Status   `json:"status" validate:"required"`
	Packages       []string `json:"packages"`
	Qualifications []string `json:"qualifications"`
	YearFrom       int      `json:"year_from" validate:"omitempty,gte=1900,lte=2200"`
	YearTo         int      `json:"year_to" validate:"omitempty,gte=1900,lte=2200"`
	Aggregate      bool     `json:"aggregate"`
	Round          bool     `json:"round"`
}

// HasFilters reports whether any package or qualification filter is active.
// Without filters the dashboard falls back to the per-status totals view.
func (s Selection) HasFilters() bool {
	return len(s.Packages) > 0 || len(s.Qualifications) > 0
}

// ChartPoint is one observation of a long-form chart series: the value of
// one group (qualification or training package) in one reporting period.
type ChartPoint struct {
	Group  string  `json:"group"`
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// DisplayTable is the final tabular representation of a report: relabeled
// headers plus rows of display cells. Cells are strings because redacted
// values render as a non-numeric marker.
type DisplayTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// MetadataEntry is one ordered description/value pair of a report's
// provenance record, serialized onto the export's Metadata sheet.
type MetadataEntry struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// Report bundles everything one filter interaction produces.
type Report struct {
	Selection Selection       `json:"selection"`
	Table     DisplayTable    `json:"table"`
	Chart     []ChartPoint    `json:"chart"`
	Metadata  []MetadataEntry `json:"metadata"`
}
