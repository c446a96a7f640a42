package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/community-events/internal/application/event"
	"github.com/baechuer/community-events/internal/transport/http/dto"
	"github.com/baechuer/community-events/internal/transport/http/middleware"
	"github.com/baechuer/community-events/internal/transport/http/response"
	"github.com/baechuer/community-events/internal/transport/http/validate"
)

type EventsHandler struct {
	svc *event.Service
}

func NewEventsHandler(svc *event.Service) *EventsHandler {
	return &EventsHandler{svc: svc}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, dto.ToEventSummaries(items))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), event.CreateCmd{
		Name:         req.Name,
		Description:  req.Description,
		Date:         req.Date,
		Participants: string(req.Participants),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusCreated, dto.ToEventResp(e, middleware.UserID(r)))
}

// Get answers {"data": null} when the event does not exist.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), chi.URLParam(r, "event_id"))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if e == nil {
		response.Data(w, r, http.StatusOK, nil)
		return
	}
	response.Data(w, r, http.StatusOK, dto.ToEventResp(e, middleware.UserID(r)))
}

// Delete only removes the event with ?confirm=true; anything else cancels.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c := event.Cancel
	if ok, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("confirm"))); ok {
		c = event.Confirm
	}

	deleted, err := h.svc.Delete(r.Context(), chi.URLParam(r, "event_id"), c)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, dto.DeleteResp{Deleted: deleted})
}

func (h *EventsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCommentReq
	if err := validate.Decode(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	c, err := h.svc.AddComment(r.Context(), event.AddCommentCmd{
		EventID: chi.URLParam(r, "event_id"),
		UserID:  middleware.UserID(r),
		Text:    req.Text,
		Rating:  req.Rating,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusCreated, dto.ToCommentResp(c))
}

func (h *EventsHandler) ConfirmAttendance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	e, err := h.svc.ConfirmAttendance(r.Context(), chi.URLParam(r, "event_id"), userID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, dto.ToEventResp(e, userID))
}

func (h *EventsHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, r, http.StatusOK, dto.CountResp{Count: n})
}
