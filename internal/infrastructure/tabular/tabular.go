// Package tabular reads reV scenario output files into dataset.Frame
// values.  CSV and parquet are supported; h5 outputs must be converted
// before use.  Column types are inferred: a column whose every non-empty
// cell parses as a number becomes float64, anything else stays string.
package tabular

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/pkg/errors"
)

// indecipherable replaces cell values that cannot be decoded as UTF-8.
const indecipherable = "indecipherable"

// ReadFile loads a scenario file into a Frame, dispatching on extension.
func ReadFile(ctx context.Context, path string) (*dataset.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(ctx, path)
	case ".parquet":
		return readParquet(ctx, path)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat,
			"unsupported file format %q: supported formats are .csv and .parquet",
			filepath.Ext(path))
	}
}

// ReadHeader returns the column names of a scenario file without loading
// the rows.
func ReadHeader(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVHeader(path)
	case ".parquet":
		return readParquetHeader(path)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat,
			"unsupported file format %q: supported formats are .csv and .parquet",
			filepath.Ext(path))
	}
}

// decodeCell forces a cell to valid UTF-8.
func decodeCell(s string) string {
	if isValidUTF8(s) {
		return s
	}
	return indecipherable
}

// Reader adapts the package-level read functions to the small reader
// interfaces the domain and application layers accept.
type Reader struct{}

// ReadFile loads a scenario file into a Frame.
func (Reader) ReadFile(ctx context.Context, path string) (*dataset.Frame, error) {
	return ReadFile(ctx, path)
}

// ReadHeader returns the column names of a scenario file.
func (Reader) ReadHeader(ctx context.Context, path string) ([]string, error) {
	return ReadHeader(ctx, path)
}
