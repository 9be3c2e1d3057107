package tabular

import (
	"context"
	"io"
	"math"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/pkg/errors"
)

func openParquet(path string) (*parquet.File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrCodeReadFailure, "failed to open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, errors.ErrCodeReadFailure, "failed to stat %s", path)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, errors.ErrCodeReadFailure, "failed to read parquet %s", path)
	}
	return pf, f, nil
}

func readParquetHeader(path string) ([]string, error) {
	pf, f, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fields := pf.Schema().Fields()
	cols := make([]string, len(fields))
	for i, field := range fields {
		cols[i] = field.Name()
	}
	return cols, nil
}

func readParquet(ctx context.Context, path string) (*dataset.Frame, error) {
	pf, f, err := openParquet(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fields := pf.Schema().Fields()
	ncols := len(fields)
	numeric := make([]bool, ncols)
	for i, field := range fields {
		if !field.Leaf() {
			return nil, errors.Newf(errors.ErrCodeUnsupportedFormat,
				"parquet file %s has nested columns; only flat supply-curve schemas are supported", path)
		}
		switch field.Type().Kind() {
		case parquet.Boolean, parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
			numeric[i] = true
		}
	}

	var totalRows int64
	for _, rg := range pf.RowGroups() {
		totalRows += rg.NumRows()
	}

	floatCols := make([][]float64, ncols)
	stringCols := make([][]string, ncols)
	for i := range fields {
		if numeric[i] {
			floatCols[i] = make([]float64, 0, totalRows)
		} else {
			stringCols[i] = make([]string, 0, totalRows)
		}
	}

	buf := make([]parquet.Row, 1024)
	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows := rg.Rows()
		for {
			n, readErr := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				for _, val := range row {
					ci := val.Column()
					if ci < 0 || ci >= ncols {
						continue
					}
					if numeric[ci] {
						floatCols[ci] = append(floatCols[ci], valueToFloat(val))
					} else {
						stringCols[ci] = append(stringCols[ci], valueToString(val))
					}
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				rows.Close()
				return nil, errors.Wrapf(readErr, errors.ErrCodeReadFailure,
					"failed to read parquet rows from %s", path)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeReadFailure,
				"failed to close parquet row reader for %s", path)
		}
	}

	frame := dataset.New()
	for i, field := range fields {
		if numeric[i] {
			if err := frame.AddFloats(field.Name(), floatCols[i]); err != nil {
				return nil, err
			}
			continue
		}
		if err := frame.AddStrings(field.Name(), stringCols[i]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func valueToFloat(v parquet.Value) float64 {
	if v.IsNull() {
		return math.NaN()
	}
	switch v.Kind() {
	case parquet.Boolean:
		if v.Boolean() {
			return 1
		}
		return 0
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	default:
		return math.NaN()
	}
}

func valueToString(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return decodeCell(string(v.ByteArray()))
	default:
		return v.String()
	}
}
