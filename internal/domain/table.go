package domain

import "slices"

// Table is an ordered sequence of rows sharing a column set.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Concat appends tables in order. Columns are the union of the inputs in
// first-seen order; rows are neither deduplicated nor reordered.
func Concat(tables ...Table) Table {
	var out Table
	for _, t := range tables {
		for _, c := range t.Columns {
			if !slices.Contains(out.Columns, c) {
				out.Columns = append(out.Columns, c)
			}
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}
