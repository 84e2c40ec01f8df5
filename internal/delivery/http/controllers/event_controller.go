package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// Field length bounds shared by event create and update bodies.
const (
	minAnnotationLen  = 20
	maxAnnotationLen  = 2000
	minDescriptionLen = 20
	maxDescriptionLen = 7000
	minTitleLen       = 3
	maxTitleLen       = 120
)

// NewEventRequest is the request body for POST /users/{userId}/events.
type NewEventRequest struct {
	Annotation        string          `json:"annotation"`
	Category          int64           `json:"category"`
	Description       string          `json:"description"`
	EventDate         string          `json:"eventDate"`
	Location          domain.GeoPoint `json:"location"`
	Paid              bool            `json:"paid"`
	ParticipantLimit  int             `json:"participantLimit"`
	RequestModeration *bool           `json:"requestModeration"`
	Title             string          `json:"title"`
}

// Validate implements Validator.
func (n NewEventRequest) Validate() []string {
	var errs []string
	if l := len(strings.TrimSpace(n.Annotation)); l < minAnnotationLen || l > maxAnnotationLen {
		errs = append(errs, "annotation must be 20 to 2000 characters")
	}
	if n.Category <= 0 {
		errs = append(errs, "category is required")
	}
	if l := len(strings.TrimSpace(n.Description)); l < minDescriptionLen || l > maxDescriptionLen {
		errs = append(errs, "description must be 20 to 7000 characters")
	}
	if n.EventDate == "" {
		errs = append(errs, "eventDate is required")
	} else if _, err := time.Parse(helpers.TimeLayout, n.EventDate); err != nil {
		errs = append(errs, "eventDate must use format 2006-01-02 15:04:05")
	}
	if n.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must be non-negative")
	}
	if l := len(strings.TrimSpace(n.Title)); l < minTitleLen || l > maxTitleLen {
		errs = append(errs, "title must be 3 to 120 characters")
	}
	return errs
}

// UpdateEventRequest is the request body for the owner and admin event PATCH
// endpoints. All fields are optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Annotation        *string          `json:"annotation"`
	Category          *int64           `json:"category"`
	Description       *string          `json:"description"`
	EventDate         *string          `json:"eventDate"`
	Location          *domain.GeoPoint `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int             `json:"participantLimit"`
	RequestModeration *bool            `json:"requestModeration"`
	Title             *string          `json:"title"`
	StateAction       *string          `json:"stateAction"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Annotation != nil {
		if l := len(strings.TrimSpace(*u.Annotation)); l < minAnnotationLen || l > maxAnnotationLen {
			errs = append(errs, "annotation must be 20 to 2000 characters")
		}
	}
	if u.Description != nil {
		if l := len(strings.TrimSpace(*u.Description)); l < minDescriptionLen || l > maxDescriptionLen {
			errs = append(errs, "description must be 20 to 7000 characters")
		}
	}
	if u.EventDate != nil {
		if _, err := time.Parse(helpers.TimeLayout, *u.EventDate); err != nil {
			errs = append(errs, "eventDate must use format 2006-01-02 15:04:05")
		}
	}
	if u.ParticipantLimit != nil && *u.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must be non-negative")
	}
	if u.Title != nil {
		if l := len(strings.TrimSpace(*u.Title)); l < minTitleLen || l > maxTitleLen {
			errs = append(errs, "title must be 3 to 120 characters")
		}
	}
	if u.StateAction != nil {
		switch domain.StateAction(*u.StateAction) {
		case domain.ActionPublishEvent, domain.ActionRejectEvent, domain.ActionSendToReview, domain.ActionCancelReview:
		default:
			errs = append(errs, "unknown stateAction")
		}
	}
	return errs
}

func (u UpdateEventRequest) toDomain() domain.EventUpdate {
	upd := domain.EventUpdate{
		Annotation:        u.Annotation,
		CategoryID:        u.Category,
		Description:       u.Description,
		Location:          u.Location,
		Paid:              u.Paid,
		ParticipantLimit:  u.ParticipantLimit,
		RequestModeration: u.RequestModeration,
		Title:             u.Title,
	}
	if u.EventDate != nil {
		if t, err := time.Parse(helpers.TimeLayout, *u.EventDate); err == nil {
			upd.EventDate = &t
		}
	}
	if u.StateAction != nil {
		action := domain.StateAction(*u.StateAction)
		upd.StateAction = &action
	}
	return upd
}

// EventSuccessResponse is the success envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// EventListSuccessResponse is the success envelope for event listing endpoints.
type EventListSuccessResponse struct {
	Data  []*domain.EventDetails `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event owned by the user. The event starts in PENDING state and must be at least two hours in the future.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param body body NewEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event date too soon)"
// @Router /users/{userId}/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	eventDate, _ := time.Parse(helpers.TimeLayout, req.EventDate)
	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}
	data := domain.NewEventData{
		Annotation:        req.Annotation,
		CategoryID:        req.Category,
		Description:       req.Description,
		EventDate:         eventDate,
		Location:          req.Location,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
		Title:             req.Title,
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, data)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetUserEvents godoc
// @Summary List events owned by the user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param from query int false "Rows to skip (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventListSuccessResponse "data is an array of events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events [get]
func (c *EventController) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	events, err := c.Service.GetUserEvents(r.Context(), userID, page)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetUserEvent godoc
// @Summary Get one of the user's events with full details
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not initiator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events/{eventId} [get]
func (c *EventController) GetUserEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(r, "eventId")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventId")
		return
	}
	event, err := c.Service.GetUserEvent(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateUserEvent godoc
// @Summary Update one of the user's events
// @Description Partial update. Only pending or canceled events can be changed. stateAction SEND_TO_REVIEW or CANCEL_REVIEW moves the event between those states.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not initiator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event published or date too soon)"
// @Router /users/{userId}/events/{eventId} [patch]
func (c *EventController) UpdateUserEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
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
		if action != domain.ActionSendToReview && action != domain.ActionCancelReview {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "stateAction must be SEND_TO_REVIEW or CANCEL_REVIEW")
			return
		}
	}
	event, err := c.Service.UpdateEventByOwner(r.Context(), userID, eventID, req.toDomain())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// GetEventsPublic godoc
// @Summary Search published events
// @Description Full public search: text matches annotation or description case-insensitively, rangeStart/rangeEnd bound the event date (future events only when both omitted), onlyAvailable drops events at their participant limit. sort is EVENT_DATE or VIEWS. Every call is recorded in view statistics.
// @Tags events
// @Produce json
// @Param text query string false "Text to match in annotation or description"
// @Param categories query []int false "Category ids"
// @Param paid query bool false "Paid events only"
// @Param rangeStart query string false "Earliest event date (2006-01-02 15:04:05)"
// @Param rangeEnd query string false "Latest event date (2006-01-02 15:04:05)"
// @Param onlyAvailable query bool false "Exclude full events"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Param from query int false "Rows to skip (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventListSuccessResponse "data is an array of events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *EventController) GetEventsPublic(w http.ResponseWriter, r *http.Request) {
	filter, sort, ok := parsePublicFilter(w, r)
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	events, err := c.Service.GetEventsPublic(r.Context(), filter, sort, page, helpers.ClientIP(r))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEventPublic godoc
// @Summary Get a published event
// @Description Returns full details for a published event. Unpublished events are reported as not found. The call is recorded in view statistics.
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *EventController) GetEventPublic(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	event, err := c.Service.GetEventPublic(r.Context(), eventID, helpers.ClientIP(r))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

func parsePublicFilter(w http.ResponseWriter, r *http.Request) (domain.PublicEventFilter, domain.EventSort, bool) {
	var filter domain.PublicEventFilter
	filter.Text = strings.TrimSpace(r.URL.Query().Get("text"))

	categories, ok := helpers.QueryInt64s(r, "categories")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid categories")
		return filter, domain.SortDefault, false
	}
	filter.Categories = categories

	paid, ok := helpers.QueryBool(r, "paid")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid paid")
		return filter, domain.SortDefault, false
	}
	filter.Paid = paid

	rangeStart, ok := helpers.QueryTime(r, "rangeStart")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeStart")
		return filter, domain.SortDefault, false
	}
	rangeEnd, ok := helpers.QueryTime(r, "rangeEnd")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid rangeEnd")
		return filter, domain.SortDefault, false
	}
	filter.RangeStart = rangeStart
	filter.RangeEnd = rangeEnd

	onlyAvailable, ok := helpers.QueryBool(r, "onlyAvailable")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid onlyAvailable")
		return filter, domain.SortDefault, false
	}
	filter.OnlyAvailable = onlyAvailable != nil && *onlyAvailable

	sort := domain.EventSort(r.URL.Query().Get("sort"))
	switch sort {
	case domain.SortDefault, domain.SortEventDate, domain.SortViews:
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "sort must be EVENT_DATE or VIEWS")
		return filter, domain.SortDefault, false
	}
	return filter, sort, true
}
