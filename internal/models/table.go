package models

// RawTable is an untyped table as it comes off an ingestion path: a header
// row of column names and string cells. Typed row structs are produced from
// it at the load boundary.
type RawTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewRawTable creates a table with the given columns and no rows.
func NewRawTable(columns []string) *RawTable {
	return &RawTable{Columns: columns, Rows: [][]string{}}
}

// ColumnIndex returns the position of the named column, or -1 if the table
// has no such column.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column name), or "" when the column is
// absent or the row is short. Short rows happen when source tables carry
// inconsistent column sets and are padded by name, not position.
func (t *RawTable) Cell(row []string, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Empty reports whether the table has no rows. A column-less empty table is
// the "no data available" result and must not be assumed to carry a schema.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}
