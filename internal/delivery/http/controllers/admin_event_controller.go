package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

type AdminEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewAdminEventController(logger *slog.Logger, svc domain.EventService) *AdminEventController {
	return &AdminEventController{
		Logger:  logger,
		Service: svc,
	}
}

// GetEvents godoc
// @Summary List events for moderation
// @Description Admin listing filtered by initiators, states, categories, and event date range. All filters optional; an empty filter matches everything.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []int false "Initiator ids"
// @Param states query []string false "Event states (PENDING, PUBLISHED, CANCELED)"
// @Param categories query []int false "Category ids"
// @Param rangeStart query string false "Earliest event date (2006-01-02 15:04:05)"
// @Param rangeEnd query string false "Latest event date (2006-01-02 15:04:05)"
// @Param from query int false "Rows to skip (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventListSuccessResponse "data is an array of events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events [get]
func (c *AdminEventController) GetEvents(w http.ResponseWriter, r *http.Request) {
	var filter domain.AdminEventFilter

	users, ok := helpers.QueryInt64s(r, "users")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid users")
		return
	}
	filter.Users = users

	for _, raw := range r.URL.Query()["states"] {
		state := domain.EventState(raw)
		if !state.Valid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown state "+raw)
			return
		}
		filter.States = append(filter.States, state)
	}

	categories, ok := helpers.QueryInt64s(r, "categories")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid categories")
		return
	}
	filter.Categories = categories

	rangeStart, ok := helpers.QueryTime(r, "rangeStart")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeStart")
		return
	}
	rangeEnd, ok := helpers.QueryTime(r, "rangeEnd")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeEnd")
		return
	}
	filter.RangeStart = rangeStart
	filter.RangeEnd = rangeEnd

	page := helpers.ParsePagination(r)
	events, err := c.Service.GetEventsByAdmin(r.Context(), filter, page)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary Moderate an event
// @Description Admin partial update. stateAction PUBLISH_EVENT publishes a pending event; REJECT_EVENT rejects an event that is not yet published. The event date must be at least one hour away.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (wrong state or date too soon)"
// @Router /admin/events/{eventId} [patch]
func (c *AdminEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(r, "eventId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventId")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.StateAction != nil {
		action := domain.StateAction(*req.StateAction)
		if action != domain.ActionPublishEvent && action != domain.ActionRejectEvent {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "stateAction must be PUBLISH_EVENT or REJECT_EVENT")
			return
		}
	}
	event, err := c.Service.UpdateEventByAdmin(r.Context(), eventID, req.toDomain())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
