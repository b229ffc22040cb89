package artifactstore

import (
	"fmt"
	"sort"

	"github.com/electric-coding/artifactstore/internal/codec"
	"github.com/electric-coding/artifactstore/internal/metrics"
	"github.com/electric-coding/artifactstore/internal/storage"
)

type (
	Table        = codec.Table
	Figure       = codec.Figure
	FigureFormat = codec.FigureFormat
	ImageFigure  = codec.ImageFigure
)

const (
	FormatPNG  = codec.FormatPNG
	FormatJPEG = codec.FormatJPEG
	FormatPDF  = codec.FormatPDF
	FormatSVG  = codec.FormatSVG
	FormatEPS  = codec.FormatEPS
)

type tableFormat struct {
	name   string
	suffix string
	encode func(codec.Table) ([]byte, error)
	decode func([]byte) (codec.Table, error)
}

var (
	csvFormat     = tableFormat{name: "csv", suffix: ".csv", encode: codec.EncodeCSV, decode: codec.DecodeCSV}
	parquetFormat = tableFormat{name: "parquet", suffix: ".parquet", encode: codec.EncodeParquet, decode: codec.DecodeParquet}
)

// ReadCSV reads one CSV file, or every ".csv" file beneath rel when rel
// is a directory or prefix. Fragments are concatenated in sorted path
// order.
func (s *Store) ReadCSV(rel string) (Table, error) {
	return s.readTable(rel, csvFormat)
}

func (s *Store) WriteCSV(rel string, t Table) error {
	return s.writeTable(rel, t, csvFormat)
}

// ReadParquet follows the same file-or-directory rules as ReadCSV with
// ".parquet" fragments.
func (s *Store) ReadParquet(rel string) (Table, error) {
	return s.readTable(rel, parquetFormat)
}

func (s *Store) WriteParquet(rel string, t Table) error {
	return s.writeTable(rel, t, parquetFormat)
}

func (s *Store) writeTable(rel string, t Table, format tableFormat) error {
	data, err := format.encode(t)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", format.name, rel, err)
	}
	data, err = codec.Compress(codec.CompressionFor(rel), data)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", format.name, rel, err)
	}
	return s.write("write_"+format.name, rel, data, "")
}

func (s *Store) readTable(rel string, format tableFormat) (Table, error) {
	op := "read_" + format.name
	full := s.FullPath(rel)

	entry, err := s.backend.Stat(full)
	if err != nil {
		s.observe(op, err)
		return Table{}, err
	}

	switch entry {
	case storage.File:
		return s.readTableFile(op, rel, full, format)
	case storage.Directory:
		files, err := s.backend.List(full, format.suffix)
		if err != nil {
			s.observe(op, err)
			return Table{}, err
		}
		if len(files) == 0 {
			err := fmt.Errorf("read %s: %w: no %s files found", full, ErrNotFound, format.suffix)
			s.observe(op, err)
			return Table{}, err
		}
		sort.Strings(files)
		parts := make([]Table, 0, len(files))
		for _, f := range files {
			part, err := s.readTableFile(op, rel, f, format)
			if err != nil {
				return Table{}, err
			}
			parts = append(parts, part)
		}
		return codec.Concat(parts...), nil
	default:
		err := fmt.Errorf("read %s: %w: path not found", full, ErrNotFound)
		s.observe(op, err)
		return Table{}, err
	}
}

func (s *Store) readTableFile(op, rel, full string, format tableFormat) (Table, error) {
	data, err := s.backend.ReadAll(full)
	s.observe(op, err)
	if err != nil {
		return Table{}, err
	}
	metrics.AddBytes(s.kind.String(), "in", len(data))

	data, err = codec.Decompress(codec.CompressionFor(full), data)
	if err != nil {
		return Table{}, parseError(rel, err)
	}
	t, err := format.decode(data)
	if err != nil {
		if full != s.FullPath(rel) {
			err = fmt.Errorf("%s: %w", full, err)
		}
		return Table{}, parseError(rel, err)
	}
	return t, nil
}

// ReadJSON decodes the document at rel into v. Comments and trailing
// commas are accepted.
func (s *Store) ReadJSON(rel string, v any) error {
	data, err := s.read("read_json", rel)
	if err != nil {
		return err
	}
	if err := codec.DecodeJSON(data, v); err != nil {
		return parseError(rel, err)
	}
	return nil
}

// WriteJSON accepts the Indent and ContentType options.
func (s *Store) WriteJSON(rel string, v any, opts ...WriteOption) error {
	o := applyWriteOptions(opts)
	indent := s.jsonIndent
	if o.indentSet {
		indent = o.indent
	}
	data, err := codec.EncodeJSON(v, indent)
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return s.write("write_json", rel, data, o.contentType)
}

// ReadYAML returns the document's value: map[string]any for a mapping,
// []any for a sequence, or a scalar. An empty document yields an empty
// map.
func (s *Store) ReadYAML(rel string) (any, error) {
	data, err := s.read("read_yaml", rel)
	if err != nil {
		return nil, err
	}
	doc, err := codec.DecodeYAML(data)
	if err != nil {
		return nil, parseError(rel, err)
	}
	return doc, nil
}

// WriteYAML writes block style unless FlowStyle is given. Indent and
// ContentType also apply.
func (s *Store) WriteYAML(rel string, v any, opts ...WriteOption) error {
	o := applyWriteOptions(opts)
	indent := s.yamlIndent
	if o.indentSet {
		indent = o.indent
	}
	data, err := codec.EncodeYAML(v, indent, o.flow)
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return s.write("write_yaml", rel, data, o.contentType)
}

// ReadObject decodes an object written by WriteObject into v. Values are
// not portable across incompatible changes to their Go types.
func (s *Store) ReadObject(rel string, v any) error {
	data, err := s.read("read_object", rel)
	if err != nil {
		return err
	}
	if err := codec.DecodeObject(data, v); err != nil {
		return parseError(rel, err)
	}
	return nil
}

func (s *Store) WriteObject(rel string, v any) error {
	data, err := codec.EncodeObject(v)
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return s.write("write_object", rel, data, "")
}

// SaveFigure renders fig in the format implied by rel's extension (PNG
// when the extension is not recognized) and writes the result.
func (s *Store) SaveFigure(rel string, fig Figure) error {
	data, err := codec.RenderFigure(fig, codec.FigureFormatFor(rel))
	if err != nil {
		return fmt.Errorf("save figure %s: %w", rel, err)
	}
	return s.write("save_figure", rel, data, "")
}
