package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
	"github.com/wmcornejo/reView/pkg/errors"
)

// ProjectHandler handles HTTP requests for project discovery and inspection.
type ProjectHandler struct {
	registry *project.Registry
	logger   logging.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(registry *project.Registry, logger logging.Logger) *ProjectHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ProjectHandler{registry: registry, logger: logger}
}

// ListProjectsResponse is the response for GET /projects.
type ListProjectsResponse struct {
	Projects []string `json:"projects"`
	Count    int      `json:"count"`
}

// ProjectView is the effective view of one project: configured values merged
// with the column defaults the dashboard falls back to.
type ProjectView struct {
	Name           string                   `json:"name"`
	Directory      string                   `json:"directory"`
	Scenarios      []string                 `json:"scenarios"`
	Units          map[string]string        `json:"units"`
	Titles         map[string]string        `json:"titles,omitempty"`
	Scales         map[string]project.Scale `json:"scales,omitempty"`
	CapacityColumn string                   `json:"capacity_column,omitempty"`
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.registry.SortedNames(r.Context())
	writeJSON(w, http.StatusOK, ListProjectsResponse{
		Projects: names,
		Count:    len(names),
	})
}

// Get handles GET /api/v1/projects/{projectName}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "projectName")
	cfg, err := h.registry.Get(name)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	scenarios, err := cfg.Scenarios(r.Context())
	if err != nil {
		h.logger.Error("failed to list scenarios",
			logging.String("project", cfg.Name), logging.Err(err))
		writeAppError(w, r, err)
		return
	}

	view := ProjectView{
		Name:      cfg.Name,
		Directory: cfg.Directory,
		Scenarios: scenarios,
		Units:     cfg.EffectiveUnits(),
		Titles:    cfg.Titles,
		Scales:    cfg.EffectiveScales(),
	}

	// The capacity column is inferred from scenario headers; a project whose
	// files carry none still has a servable view.
	if capacity, err := cfg.CapacityColumn(r.Context()); err == nil {
		view.CapacityColumn = capacity
	} else if !errors.IsCode(err, errors.ErrCodeColumnNotFound) {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
