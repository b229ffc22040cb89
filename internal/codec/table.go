package codec

// Table is a header plus string-typed rows. Both tabular formats store
// every cell as a string, so a Table survives a round trip unchanged.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Concat stacks tables vertically. Columns are the union of all inputs in
// first-seen order; cells a fragment does not have are left empty.
func Concat(tables ...Table) Table {
	var out Table
	index := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := index[c]; ok {
				continue
			}
			index[c] = len(out.Columns)
			out.Columns = append(out.Columns, c)
		}
	}

	for _, t := range tables {
		for _, row := range t.Rows {
			merged := make([]string, len(out.Columns))
			for i, cell := range row {
				if i >= len(t.Columns) {
					break
				}
				merged[index[t.Columns[i]]] = cell
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}
