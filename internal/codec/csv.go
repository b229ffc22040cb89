package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// emptyRecord is a record holding one empty field. encoding/csv writes it
// as a blank line, which readers skip.
const emptyRecord = "\"\"\n"

func EncodeCSV(t Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		if len(t.Rows) > 0 {
			return nil, errors.New("csv rows without columns")
		}
		return []byte{}, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := writeRecord(w, &buf, t.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("csv row %d has %d fields, want %d", i, len(row), len(t.Columns))
		}
		if err := writeRecord(w, &buf, row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRecord(w *csv.Writer, buf *bytes.Buffer, rec []string) error {
	if len(rec) == 1 && rec[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		buf.WriteString(emptyRecord)
		return nil
	}
	return w.Write(rec)
}

// DecodeCSV treats the first record as the header. Every data record
// must have as many fields as the header. Rows is nil when the file has
// no data records.
func DecodeCSV(data []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("read csv header: %w", err)
	}

	t := Table{Columns: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read csv: %w", err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
