package mapview

import (
	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/internal/domain/signal"
	"github.com/wmcornejo/reView/pkg/errors"
)

// diffFrame joins two scenario frames on sc_point_gid and appends the
// difference column named by y: a-b for plain differences, (a-b)/b*100 for
// percentage differences.  Rows of a without a gid match in b are dropped;
// every other column comes from a.
func diffFrame(a, b *dataset.Frame, y string) (*dataset.Frame, error) {
	y0 := signal.BaseVariable(y)
	pct := signal.IsPercentDiff(y)

	gidsA, ok := a.Floats(gidColumn)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound,
			"mapview: first scenario has no %q column to join on", gidColumn)
	}
	valsA, ok := a.Floats(y0)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound,
			"mapview: first scenario has no numeric column %q", y0)
	}
	gidsB, ok := b.Floats(gidColumn)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound,
			"mapview: second scenario has no %q column to join on", gidColumn)
	}
	valsB, ok := b.Floats(y0)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound,
			"mapview: second scenario has no numeric column %q", y0)
	}

	lookup := make(map[float64]float64, len(gidsB))
	for i, g := range gidsB {
		lookup[g] = valsB[i]
	}

	mask := make([]bool, len(gidsA))
	diffs := make([]float64, 0, len(gidsA))
	for i, g := range gidsA {
		vb, matched := lookup[g]
		if !matched {
			continue
		}
		mask[i] = true
		d := valsA[i] - vb
		if pct {
			d = d / vb * 100
		}
		diffs = append(diffs, d)
	}

	joined, err := a.Select(mask)
	if err != nil {
		return nil, err
	}
	return joined.WithFloats(y, diffs)
}
