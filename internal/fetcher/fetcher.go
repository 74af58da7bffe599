// Package fetcher reads contact records out of tabular source files and
// writes cleaned results back out.
package fetcher

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-cleaner/internal/model"
)

// ReadSource loads all records from the file at path, dispatching on the
// file extension. Supported formats are .csv and .xlsx.
func ReadSource(ctx context.Context, path string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "fetcher: read source")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", filepath.Ext(path))
	}
}

// SupportedExt reports whether name carries a file extension ReadSource
// can handle.
func SupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
