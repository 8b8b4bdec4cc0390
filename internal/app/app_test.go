package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]any
	}{
		{"Qual_Commenced", [][]any{
			{"Latest Qualification", "Training Packages", "TDV", "Apprentices, 2022", "Apprentices, 2023"},
			{"Cert III Electrotechnology", "Electrical", 4, 120, 135},
			{"Cert III Plumbing", "Construction", 4, 55, 61},
		}},
		{"Qual_In-training", [][]any{
			{"Latest Qualification", "Training Packages", "TDV", "Apprentices, 2022", "Apprentices, 2023"},
			{"Cert III Electrotechnology", "Electrical", 4, 300, 310},
		}},
		{"Qual_Completed", [][]any{
			{"Latest Qualification", "Training Packages", "TDV", "Apprentices, 2022", "Apprentices, 2023"},
			{"Cert III Electrotechnology", "Electrical", 4, 80, 90},
		}},
		{"Status_Totals", [][]any{
			{"Status", "Apprentices, 2022", "Apprentices, 2023"},
			{"Commencements", 175, 196},
			{"In-training", 300, 310},
			{"Completions", 80, 90},
		}},
	}
	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "TP_Qualifications_Merged.xlsx"))

	t.Setenv("VETTOO_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("VETTOO_PATHS_DATA_DIR", dir)
	t.Setenv("VETTOO_SERVER_RATE_LIMIT_ENABLED", "false")

	application, err := NewApplication(context.Background())
	require.NoError(t, err)
	return application
}

func TestNewApplicationFailsWithoutWorkbook(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VETTOO_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("VETTOO_PATHS_DATA_DIR", dir)

	_, err := NewApplication(context.Background())
	require.Error(t, err, "missing source data is fatal at startup")
	assert.Contains(t, err.Error(), "resolve workbook")
}

func TestHealthEndpoint(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body["workbook"], "TP_Qualifications_Merged.xlsx")
}

func TestReportEndToEnd(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/report?status=Commencements&packages=Electrical", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rep struct {
		Table struct {
			Headers []string   `json:"headers"`
			Rows    [][]string `json:"rows"`
		} `json:"table"`
		Chart []any `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, []string{"Latest Qualification", "Training Packages", "TDV", "2022", "2023"}, rep.Table.Headers)
	require.Len(t, rep.Table.Rows, 2, "one matching record plus the totals row")
	assert.Len(t, rep.Chart, 2)
}

func TestExportEndToEnd(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/report/export?status=Completions&packages=Electrical&round=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Completions_data.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.ElementsMatch(t, []string{"Data", "Metadata"}, f.GetSheetList())
}

func TestMetricsEndpoint(t *testing.T) {
	application := newTestApplication(t)

	// A served request populates the request counter series.
	warm := httptest.NewRecorder()
	application.Router.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, warm.Code)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vettoo_http_requests_total")
}
