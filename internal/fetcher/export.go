package fetcher

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-cleaner/internal/model"
)

// WriteCSV writes records to w as CSV. The header is the sorted union of
// every field name across the records, so enriched fields that only some
// records carry still get a column.
func WriteCSV(w io.Writer, records []model.Record) error {
	seen := make(map[string]bool)
	var header []string
	for _, rec := range records {
		for name := range rec {
			if !seen[name] {
				seen[name] = true
				header = append(header, name)
			}
		}
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "fetcher: write csv header")
	}

	row := make([]string, len(header))
	for _, rec := range records {
		for i, name := range header {
			row[i] = rec.Get(name)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "fetcher: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "fetcher: flush csv")
}
