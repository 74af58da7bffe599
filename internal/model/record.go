package model

// Record is one contact's field-name-to-value mapping. Field names come from
// the source file's header row; a field that is absent reads as the empty
// string, so callers never need to distinguish missing from blank.
type Record map[string]string

// NewRecord builds a Record from a header row and a data row. Header cells
// are used as-is; rows shorter than the header read as empty strings for the
// trailing fields, and cells beyond the header are dropped.
func NewRecord(header, row []string) Record {
	rec := make(Record, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(row) {
			rec[name] = row[i]
		} else {
			rec[name] = ""
		}
	}
	return rec
}

// Get returns the value for the named field, or "" when the field is absent.
func (r Record) Get(name string) string {
	if r == nil {
		return ""
	}
	return r[name]
}

// Set stores a field value. The record must have been created via NewRecord
// or Clone; Set on a nil Record panics.
func (r Record) Set(name, value string) {
	r[name] = value
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
