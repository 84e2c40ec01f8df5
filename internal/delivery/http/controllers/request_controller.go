package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// DecideRequestsRequest is the request body for PATCH /users/{userId}/events/{eventId}/requests.
type DecideRequestsRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}

// Validate implements Validator.
func (d DecideRequestsRequest) Validate() []string {
	var errs []string
	if len(d.RequestIDs) == 0 {
		errs = append(errs, "requestIds is required")
	}
	if d.Status != string(domain.RequestConfirmed) && d.Status != string(domain.RequestRejected) {
		errs = append(errs, "status must be CONFIRMED or REJECTED")
	}
	return errs
}

// RequestSuccessResponse is the success envelope for single-request endpoints.
type RequestSuccessResponse struct {
	Data  *domain.Request   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RequestListSuccessResponse is the success envelope for request listing endpoints.
type RequestListSuccessResponse struct {
	Data  []*domain.Request `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DecideRequestsSuccessResponse is the success envelope for the bulk decision endpoint.
type DecideRequestsSuccessResponse struct {
	Data  *domain.RequestDecisionResult `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

type RequestController struct {
	Logger  *slog.Logger
	Service domain.RequestService
}

func NewRequestController(logger *slog.Logger, svc domain.RequestService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

// GetUserRequests godoc
// @Summary List the user's participation requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} controllers.RequestListSuccessResponse "data is an array of requests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/requests [get]
func (c *RequestController) GetUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	requests, err := c.Service.GetRequestsByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// CreateRequest godoc
// @Summary Request participation in an event
// @Description Creates a participation request. Rejected with 409 when the request would duplicate an active one, the user initiated the event, the event is unpublished, or the participant limit is reached. Auto-confirmed when the event skips moderation or has no limit.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId query int true "Event ID"
// @Success 201 {object} controllers.RequestSuccessResponse "data contains the created request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	eventIDs, ok := helpers.QueryInt64s(r, "eventId")
	if !ok || len(eventIDs) != 1 || eventIDs[0] <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "eventId is required")
		return
	}
	request, err := c.Service.CreateRequest(r.Context(), userID, eventIDs[0])
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, request)
}

// CancelRequest godoc
// @Summary Cancel one of the user's participation requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param requestId path int true "Request ID"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the canceled request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (foreign or confirmed request)"
// @Router /users/{userId}/requests/{requestId}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	requestID, ok := helpers.PathID(r, "requestId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid requestId")
		return
	}
	request, err := c.Service.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, request)
}

// GetEventRequests godoc
// @Summary List participation requests for one of the user's events
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.RequestListSuccessResponse "data is an array of requests"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not initiator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events/{eventId}/requests [get]
func (c *RequestController) GetEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(r, "eventId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventId")
		return
	}
	requests, err := c.Service.GetEventRequests(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, requests)
}

// DecideRequests godoc
// @Summary Confirm or reject pending requests in bulk
// @Description Applies one decision to the listed requests in order. Confirmations past the remaining capacity are demoted to REJECTED. Any non-pending request aborts the whole batch with 409 and nothing is persisted.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Param body body DecideRequestsRequest true "Request ids and the decision"
// @Success 200 {object} controllers.DecideRequestsSuccessResponse "data contains confirmed and rejected requests"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not initiator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (no moderation needed or non-pending request)"
// @Router /users/{userId}/events/{eventId}/requests [patch]
func (c *RequestController) DecideRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(r, "eventId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventId")
		return
	}
	var req DecideRequestsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	decision := domain.RequestDecision{
		RequestIDs: req.RequestIDs,
		Status:     domain.RequestStatus(req.Status),
	}
	result, err := c.Service.DecideRequests(r.Context(), userID, eventID, decision)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
