package fetcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/crm-cleaner/internal/model"
)

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Contacts")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadSourceCSV(t *testing.T) {
	path := writeTestCSV(t, "Name, Email ,Phone\nAlice, alice@example.com ,555-0100\nBob,bob@example.com\n")

	records, err := ReadSource(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Alice", records[0].Get("name"))
	assert.Equal(t, "alice@example.com", records[0].Get("email"))
	assert.Equal(t, "555-0100", records[0].Get("phone"))

	// Ragged row: missing trailing cells read as empty.
	assert.Equal(t, "Bob", records[1].Get("name"))
	assert.Equal(t, "", records[1].Get("phone"))
}

func TestReadSourceCSVEmpty(t *testing.T) {
	path := writeTestCSV(t, "")

	records, err := ReadSource(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadSourceXLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Name", "Email"},
		{" Carol ", "carol@example.com"},
		{"Dan", "dan@example.com"},
	})

	records, err := ReadSource(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Carol", records[0].Get("name"))
	assert.Equal(t, "dan@example.com", records[1].Get("email"))
}

func TestReadSourceUnsupported(t *testing.T) {
	_, err := ReadSource(context.Background(), "contacts.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadSourceMissingFile(t *testing.T) {
	_, err := ReadSource(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestSupportedExt(t *testing.T) {
	assert.True(t, SupportedExt("a.csv"))
	assert.True(t, SupportedExt("A.XLSX"))
	assert.False(t, SupportedExt("a.pdf"))
	assert.False(t, SupportedExt("csv"))
}

func TestWriteCSV(t *testing.T) {
	records := []model.Record{
		{"name": "Alice", "email": "alice@example.com"},
		{"name": "Bob", "email": "bob@example.com", "sentiment": "Positive"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	got := buf.String()
	assert.Equal(t, "email,name,sentiment\nalice@example.com,Alice,\nbob@example.com,Bob,Positive\n", got)
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "\n", buf.String())
}
