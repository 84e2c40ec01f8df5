package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// CategoryRequest is the request body for category create and update.
type CategoryRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CategoryRequest) Validate() []string {
	var errs []string
	name := strings.TrimSpace(c.Name)
	if name == "" {
		errs = append(errs, "name is required")
	} else if len(name) > 50 {
		errs = append(errs, "name must be at most 50 characters")
	}
	return errs
}

// CategorySuccessResponse is the success envelope for single-category endpoints.
type CategorySuccessResponse struct {
	Data  *domain.Category  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CategoryListSuccessResponse is the success envelope for the category listing.
type CategoryListSuccessResponse struct {
	Data  []*domain.Category `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateCategory godoc
// @Summary Create a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryRequest true "Category name"
// @Success 201 {object} controllers.CategorySuccessResponse "data contains the created category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name taken)"
// @Router /admin/categories [post]
func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, cat)
}

// UpdateCategory godoc
// @Summary Rename a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param catId path int true "Category ID"
// @Param body body CategoryRequest true "New name"
// @Success 200 {object} controllers.CategorySuccessResponse "data contains the updated category"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name taken)"
// @Router /admin/categories/{catId} [patch]
func (c *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	catID, ok := helpers.PathID(r, "catId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid catId")
		return
	}
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Service.UpdateCategory(r.Context(), catID, req.Name)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, cat)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Fails with 409 while events still reference the category.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param catId path int true "Category ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (category in use)"
// @Router /admin/categories/{catId} [delete]
func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	catID, ok := helpers.PathID(r, "catId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid catId")
		return
	}
	if err := c.Service.DeleteCategory(r.Context(), catID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Param from query int false "Rows to skip (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.CategoryListSuccessResponse "data is an array of categories"
// @Router /categories [get]
func (c *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	page := helpers.ParsePagination(r)
	cats, err := c.Service.GetCategories(r.Context(), page)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, cats)
}

// GetCategory godoc
// @Summary Get a category by id
// @Tags categories
// @Produce json
// @Param catId path int true "Category ID"
// @Success 200 {object} controllers.CategorySuccessResponse "data contains the category"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{catId} [get]
func (c *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	catID, ok := helpers.PathID(r, "catId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid catId")
		return
	}
	cat, err := c.Service.GetCategory(r.Context(), catID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, cat)
}
