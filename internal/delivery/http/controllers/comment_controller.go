package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// CommentRequest is the request body for comment create and edit.
type CommentRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (c CommentRequest) Validate() []string {
	var errs []string
	text := strings.TrimSpace(c.Text)
	if text == "" {
		errs = append(errs, "text is required")
	} else if len(text) > 2000 {
		errs = append(errs, "text must be at most 2000 characters")
	}
	return errs
}

// CommentSuccessResponse is the success envelope for single-comment endpoints.
type CommentSuccessResponse struct {
	Data  *domain.Comment   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CommentListSuccessResponse is the success envelope for comment listings.
type CommentListSuccessResponse struct {
	Data  []*domain.Comment `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type CommentController struct {
	Logger  *slog.Logger
	Service domain.CommentService
}

func NewCommentController(logger *slog.Logger, svc domain.CommentService) *CommentController {
	return &CommentController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateComment godoc
// @Summary Comment on a published event
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Param body body CommentRequest true "Comment text"
// @Success 201 {object} controllers.CommentSuccessResponse "data contains the created comment"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event not published)"
// @Router /users/{userId}/events/{eventId}/comments [post]
func (c *CommentController) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(r, "eventId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventId")
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.CreateComment(r.Context(), userID, eventID, req.Text)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// UpdateComment godoc
// @Summary Edit one of the user's comments
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param commentId path int true "Comment ID"
// @Param body body CommentRequest true "New text"
// @Success 200 {object} controllers.CommentSuccessResponse "data contains the updated comment"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not author)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/comments/{commentId} [patch]
func (c *CommentController) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	commentID, ok := helpers.PathID(r, "commentId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid commentId")
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.UpdateComment(r.Context(), userID, commentID, req.Text)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete one of the user's comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param commentId path int true "Comment ID"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not author)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/comments/{commentId} [delete]
func (c *CommentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	commentID, ok := helpers.PathID(r, "commentId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid commentId")
		return
	}
	if err := c.Service.DeleteComment(r.Context(), userID, commentID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCommentByAdmin godoc
// @Summary Delete any comment
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/comments/{commentId} [delete]
func (c *CommentController) DeleteCommentByAdmin(w http.ResponseWriter, r *http.Request) {
	commentID, ok := helpers.PathID(r, "commentId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid commentId")
		return
	}
	if err := c.Service.DeleteCommentByAdmin(r.Context(), commentID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEventComments godoc
// @Summary List comments on an event
// @Tags comments
// @Produce json
// @Param id path int true "Event ID"
// @Param from query int false "Rows to skip (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.CommentListSuccessResponse "data is an array of comments, newest first"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/comments [get]
func (c *CommentController) GetEventComments(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	page := helpers.ParsePagination(r)
	comments, err := c.Service.GetEventComments(r.Context(), eventID, page)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comments)
}
