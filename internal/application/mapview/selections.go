package mapview

import (
	"strings"

	"github.com/wmcornejo/reView/internal/domain/dataset"
)

// gidColumn identifies supply-curve points across frames, traces, and
// selections.
const gidColumn = "sc_point_gid"

// printCapacityColumn carries the per-point capacity readout shipped as
// trace custom data.
const printCapacityColumn = "print_capacity"

// Point is one selected map/chart point as the frontend reports it.  The
// custom data row is [sc_point_gid, print_capacity], attached to every trace
// this package builds.
type Point struct {
	CustomData []float64 `json:"customdata,omitempty"`
	Lat        float64   `json:"lat,omitempty"`
	Lon        float64   `json:"lon,omitempty"`
}

// Selection is a box/lasso/click selection event payload.
type Selection struct {
	Points []Point `json:"points"`
}

// GIDs extracts the selected point gids.  Points without custom data are
// skipped.
func (s *Selection) GIDs() []float64 {
	if s == nil {
		return nil
	}
	gids := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		if len(p.CustomData) > 0 {
			gids = append(gids, p.CustomData[0])
		}
	}
	return gids
}

// Count returns the number of selected points; 0 for a nil selection.
func (s *Selection) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// applySelections narrows a frame to the points named by the given
// selections, in order.  Each filter copies; the input frame is never
// touched.  A selection without usable gids leaves the frame as is.
func applySelections(frame *dataset.Frame, selections ...*Selection) (*dataset.Frame, error) {
	for _, sel := range selections {
		gids := sel.GIDs()
		if len(gids) == 0 {
			continue
		}
		if !frame.Has(gidColumn) {
			return frame, nil
		}
		filtered, err := frame.FilterByGIDs(gidColumn, gids)
		if err != nil {
			return nil, err
		}
		frame = filtered
	}
	return frame, nil
}

// demandAware reports whether a map function overlays hydrogen demand nodes.
func demandAware(mapFunc string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mapFunc)), "demand")
}
