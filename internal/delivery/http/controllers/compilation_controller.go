package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// NewCompilationRequest is the request body for POST /admin/compilations.
type NewCompilationRequest struct {
	Title  string  `json:"title"`
	Pinned bool    `json:"pinned"`
	Events []int64 `json:"events"`
}

// Validate implements Validator.
func (n NewCompilationRequest) Validate() []string {
	var errs []string
	title := strings.TrimSpace(n.Title)
	if title == "" {
		errs = append(errs, "title is required")
	} else if len(title) > 50 {
		errs = append(errs, "title must be at most 50 characters")
	}
	return errs
}

// UpdateCompilationRequest is the request body for PATCH /admin/compilations/{compId}.
// All fields are optional; a non-nil events list replaces the linked events.
type UpdateCompilationRequest struct {
	Title  *string `json:"title"`
	Pinned *bool   `json:"pinned"`
	Events []int64 `json:"events"`
}

// Validate implements Validator.
func (u UpdateCompilationRequest) Validate() []string {
	var errs []string
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			errs = append(errs, "title cannot be blank")
		} else if len(title) > 50 {
			errs = append(errs, "title must be at most 50 characters")
		}
	}
	return errs
}

// CompilationSuccessResponse is the success envelope for single-compilation endpoints.
type CompilationSuccessResponse struct {
	Data  *domain.CompilationDetails `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// CompilationListSuccessResponse is the success envelope for the compilation listing.
type CompilationListSuccessResponse struct {
	Data  []*domain.CompilationDetails `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

type CompilationController struct {
	Logger  *slog.Logger
	Service domain.CompilationService
}

func NewCompilationController(logger *slog.Logger, svc domain.CompilationService) *CompilationController {
	return &CompilationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateCompilation godoc
// @Summary Create a compilation of events
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body NewCompilationRequest true "Compilation data"
// @Success 201 {object} controllers.CompilationSuccessResponse "data contains the created compilation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown event id)"
// @Router /admin/compilations [post]
func (c *CompilationController) CreateCompilation(w http.ResponseWriter, r *http.Request) {
	var req NewCompilationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comp, err := c.Service.CreateCompilation(r.Context(), req.Title, req.Pinned, req.Events)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comp)
}

// UpdateCompilation godoc
// @Summary Update a compilation
// @Description Partial update. A non-null events list replaces the linked events.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param compId path int true "Compilation ID"
// @Param body body UpdateCompilationRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.CompilationSuccessResponse "data contains the updated compilation"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/compilations/{compId} [patch]
func (c *CompilationController) UpdateCompilation(w http.ResponseWriter, r *http.Request) {
	compID, ok := helpers.PathID(r, "compId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid compId")
		return
	}
	var req UpdateCompilationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	upd := domain.CompilationUpdate{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.Events,
	}
	comp, err := c.Service.UpdateCompilation(r.Context(), compID, upd)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comp)
}

// DeleteCompilation godoc
// @Summary Delete a compilation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param compId path int true "Compilation ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/compilations/{compId} [delete]
func (c *CompilationController) DeleteCompilation(w http.ResponseWriter, r *http.Request) {
	compID, ok := helpers.PathID(r, "compId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid compId")
		return
	}
	if err := c.Service.DeleteCompilation(r.Context(), compID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCompilations godoc
// @Summary List compilations
// @Tags compilations
// @Produce json
// @Param pinned query bool false "Filter by pinned flag"
// @Param from query int false "Rows to skip (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.CompilationListSuccessResponse "data is an array of compilations"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /compilations [get]
func (c *CompilationController) GetCompilations(w http.ResponseWriter, r *http.Request) {
	pinned, ok := helpers.QueryBool(r, "pinned")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid pinned")
		return
	}
	page := helpers.ParsePagination(r)
	comps, err := c.Service.GetCompilations(r.Context(), pinned, page)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comps)
}

// GetCompilation godoc
// @Summary Get a compilation by id
// @Tags compilations
// @Produce json
// @Param compId path int true "Compilation ID"
// @Success 200 {object} controllers.CompilationSuccessResponse "data contains the compilation"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /compilations/{compId} [get]
func (c *CompilationController) GetCompilation(w http.ResponseWriter, r *http.Request) {
	compID, ok := helpers.PathID(r, "compId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid compId")
		return
	}
	comp, err := c.Service.GetCompilation(r.Context(), compID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comp)
}
