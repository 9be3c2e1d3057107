package handlers

import (
	"net/http"

	"github.com/wmcornejo/reView/internal/application/mapview"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
)

// MapHandler handles map figure and title build requests.
type MapHandler struct {
	mapSvc mapview.Service
	logger logging.Logger
}

// NewMapHandler creates a MapHandler.
func NewMapHandler(svc mapview.Service, logger logging.Logger) *MapHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MapHandler{mapSvc: svc, logger: logger}
}

// BuildMap handles POST /api/v1/map.  The body is a mapview.MapRequest; the
// response carries the figure, the per-point capacity readout, and the title.
func (h *MapHandler) BuildMap(w http.ResponseWriter, r *http.Request) {
	var req mapview.MapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}

	result, err := h.mapSvc.BuildMap(r.Context(), &req)
	if err != nil {
		h.logger.Error("map build failed",
			logging.String("project", req.Signal.Project),
			logging.String("y", req.Signal.Y),
			logging.Err(err))
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// BuildTitle handles POST /api/v1/title.  The body is a mapview.TitleRequest;
// the response carries the composed title only.
func (h *MapHandler) BuildTitle(w http.ResponseWriter, r *http.Request) {
	var req mapview.TitleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}

	result, err := h.mapSvc.BuildTitle(r.Context(), &req)
	if err != nil {
		h.logger.Error("title build failed",
			logging.String("project", req.Signal.Project),
			logging.String("y", req.Signal.Y),
			logging.Err(err))
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
