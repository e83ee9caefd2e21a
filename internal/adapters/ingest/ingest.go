// Package ingest loads tabular datasets from CSV, TSV and JSON files into
// raw rows.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/churnscope/internal/domain/model"
)

const utf8BOM = "\ufeff"

// Format names a supported dataset encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// Option applies a configuration option to the CSV loader.
type Option func(*options)

type options struct {
	comma rune
}

// WithComma sets the CSV field delimiter. Zero keeps the default.
func WithComma(r rune) Option {
	return func(o *options) {
		if r != 0 {
			o.comma = r
		}
	}
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads the dataset at path, choosing the decoder by extension.
func LoadFile(ctx context.Context, path string, opts ...Option) ([]model.RawRow, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var rows []model.RawRow
	switch format {
	case FormatTSV:
		rows, err = LoadCSV(f, append(opts, WithComma('\t'))...)
	case FormatJSON:
		rows, err = LoadJSON(f)
	default:
		rows, err = LoadCSV(f, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// LoadCSV decodes delimited text. The first record names the columns
// verbatim; later records may be shorter or longer than the header, with
// missing cells left absent and extra cells ignored.
func LoadCSV(r io.Reader, opts ...Option) ([]model.RawRow, error) {
	o := options{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = o.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var rows []model.RawRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row := make(model.RawRow, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			row[name] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadJSON decodes an array of objects. Numeric values become float64 and
// nested values are kept as decoded.
func LoadJSON(r io.Reader) ([]model.RawRow, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}

	rows := make([]model.RawRow, 0, len(raw))
	for _, obj := range raw {
		row := make(model.RawRow, len(obj))
		for k, v := range obj {
			if n, ok := v.(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					row[k] = f
					continue
				}
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
