package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// NewUserRequest is the request body for POST /admin/users.
type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (n NewUserRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(n.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.TrimSpace(strings.ToLower(n.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// UserSuccessResponse is the success envelope for single-user endpoints.
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserListSuccessResponse is the success envelope for the user listing.
type UserListSuccessResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateUser godoc
// @Summary Register a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body NewUserRequest true "User data"
// @Success 201 {object} controllers.UserSuccessResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email taken)"
// @Router /admin/users [post]
func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req NewUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.CreateUser(r.Context(), req.Name, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// GetUsers godoc
// @Summary List users
// @Description Returns the users with the given ids, or a page of all users when ids is omitted.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param ids query []int false "User ids"
// @Param from query int false "Rows to skip (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.UserListSuccessResponse "data is an array of users"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /admin/users [get]
func (c *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ids, ok := helpers.QueryInt64s(r, "ids")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ids")
		return
	}
	page := helpers.ParsePagination(r)
	users, err := c.Service.GetUsers(r.Context(), ids, page)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/users/{userId} [delete]
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := helpers.PathID(r, "userId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid userId")
		return
	}
	if err := c.Service.DeleteUser(r.Context(), userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
