package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// columnOrderKey holds the original column order; parquet groups sort
// their fields by name.
const columnOrderKey = "artifactstore.columns"

const parquetReadBatch = 256

func EncodeParquet(t Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, errors.New("parquet table has no columns")
	}

	group := make(parquet.Group, len(t.Columns))
	for _, c := range t.Columns {
		if _, dup := group[c]; dup {
			return nil, fmt.Errorf("duplicate parquet column %q", c)
		}
		group[c] = parquet.String()
	}
	schema := parquet.NewSchema("table", group)

	// Leaf index for each table column.
	leafOf := make([]int, len(t.Columns))
	leaves := make(map[string]int)
	for i, path := range schema.Columns() {
		leaves[path[0]] = i
	}
	for i, c := range t.Columns {
		leafOf[i] = leaves[c]
	}

	order, err := json.Marshal(t.Columns)
	if err != nil {
		return nil, fmt.Errorf("encode column order: %w", err)
	}

	var buf bytes.Buffer
	w := parquet.NewWriter(&buf, schema, parquet.KeyValueMetadata(columnOrderKey, string(order)))

	rows := make([]parquet.Row, 0, len(t.Rows))
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return nil, fmt.Errorf("parquet row %d has %d fields, want %d", i, len(r), len(t.Columns))
		}
		row := make(parquet.Row, len(t.Columns))
		for j, cell := range r {
			leaf := leafOf[j]
			row[leaf] = parquet.ByteArrayValue([]byte(cell)).Level(0, 0, leaf)
		}
		rows = append(rows, row)
	}
	if _, err := w.WriteRows(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeParquet(data []byte) (Table, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Table{}, fmt.Errorf("open parquet: %w", err)
	}

	leafNames := make([]string, 0)
	for _, path := range f.Schema().Columns() {
		if len(path) != 1 {
			return Table{}, fmt.Errorf("nested parquet column %v is not supported", path)
		}
		leafNames = append(leafNames, path[0])
	}

	columns := leafNames
	if raw, ok := f.Lookup(columnOrderKey); ok {
		var order []string
		if err := json.Unmarshal([]byte(raw), &order); err != nil {
			return Table{}, fmt.Errorf("decode column order: %w", err)
		}
		if len(order) == len(leafNames) {
			columns = order
		}
	}

	position := make(map[string]int, len(columns))
	for i, c := range columns {
		position[c] = i
	}
	posOfLeaf := make([]int, len(leafNames))
	for i, name := range leafNames {
		p, ok := position[name]
		if !ok {
			return Table{}, fmt.Errorf("parquet column %q missing from column order", name)
		}
		posOfLeaf[i] = p
	}

	t := Table{Columns: columns}
	buf := make([]parquet.Row, parquetReadBatch)
	for _, rg := range f.RowGroups() {
		if err := readRowGroup(rg, buf, posOfLeaf, &t); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, posOfLeaf []int, t *Table) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			out := make([]string, len(t.Columns))
			for _, v := range row {
				col := v.Column()
				if col < 0 || col >= len(posOfLeaf) || v.IsNull() {
					continue
				}
				out[posOfLeaf[col]] = string(v.ByteArray())
			}
			t.Rows = append(t.Rows, out)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}
