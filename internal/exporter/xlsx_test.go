package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vettoo/pkg/contracts/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Selection: domain.Selection{Status: domain.StatusCompletions},
		Table: domain.DisplayTable{
			Headers: []string{"Latest Qualification", "2022", "2023"},
			Rows: [][]string{
				{"Cert III Electrotechnology", "110", "120"},
				{"Cert II Electro Skills", "-", "10"},
				{"Total of selected items", "110", "130"},
			},
		},
		Metadata: []domain.MetadataEntry{
			{Description: "Source", Value: "NCVER, Apprentices and trainees"},
			{Description: "Training contract status", Value: "Completions"},
		},
	}
}

func TestWriteProducesTwoSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{DataSheet, MetadataSheet}, f.GetSheetList())
}

func TestWriteDataSheetContents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Latest Qualification", "2022", "2023"}, rows[0])
	assert.Equal(t, []string{"Cert III Electrotechnology", "110", "120"}, rows[1])
	assert.Equal(t, "-", rows[2][1], "redaction marker survives as text")

	// Counts are real numeric cells, not text.
	cellType, err := f.GetCellType(DataSheet, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
}

func TestWriteMetadataSheetContents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(MetadataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Description", "Value"}, rows[0])
	assert.Equal(t, []string{"Source", "NCVER, Apprentices and trainees"}, rows[1])
	assert.Equal(t, []string{"Training contract status", "Completions"}, rows[2])
}

func TestWriteEmptyTable(t *testing.T) {
	rep := &domain.Report{
		Selection: domain.Selection{Status: domain.StatusInTraining},
		Table:     domain.DisplayTable{Headers: []string{"Latest Qualification"}},
		Metadata:  []domain.MetadataEntry{{Description: "Source", Value: "NCVER"}},
	}

	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1, "headers only, no crash on empty result")
}
