package tabular

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/pkg/errors"
)

func isValidUTF8(s string) bool { return utf8.ValidString(s) }

func readCSV(ctx context.Context, path string) (*dataset.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReadFailure, "failed to open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReadFailure, "failed to parse csv %s", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return dataset.New(), nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	rows := records[1:]

	frame := dataset.New()
	for ci, name := range header {
		cells := make([]string, len(rows))
		for ri, row := range rows {
			cells[ri] = decodeCell(row[ci])
		}
		if isNumericColumn(cells) {
			floats := make([]float64, len(cells))
			for i, cell := range cells {
				floats[i] = parseFloatCell(cell)
			}
			if err := frame.AddFloats(name, floats); err != nil {
				return nil, err
			}
			continue
		}
		if err := frame.AddStrings(name, cells); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func readCSVHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReadFailure, "failed to open %s", path)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReadFailure, "failed to read csv header of %s", path)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header, nil
}

// isNumericColumn reports whether every non-empty cell parses as a float.
// All-empty columns count as numeric (they become NaN vectors), matching
// how supply curves encode missing numeric data.
func isNumericColumn(cells []string) bool {
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return true
}

func parseFloatCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
