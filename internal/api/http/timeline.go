package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

type TimelineHandler struct {
	TimelineService *service.TimelineService
}

// HandleList godoc
//
//	@Summary		Get a client's timeline
//	@Description	One page of a client's activity timeline, newest first: notes plus automatically recorded events.
//	@Tags			Timeline
//	@Produce		json
//	@Param			id		path		string	true	"Client id"
//	@Param			page	query		int		false	"Page number (1-based)"
//	@Param			limit	query		int		false	"Page size (max 100)"
//	@Success		200		{object}	eventPageResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/timeline [get].
func (h *TimelineHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.TimelineService.List(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"), page, limit)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to list timeline", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list timeline")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toEventPageResponse(result))
}

type addNoteRequest struct {
	Content string `json:"content"`
}

// HandleAddNote godoc
//
//	@Summary		Add a note to a client's timeline
//	@Description	Appends an immutable note event. Notes cannot be edited or deleted.
//	@Tags			Timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Client id"
//	@Param			request	body		addNoteRequest	true	"Note content"
//	@Success		201		{object}	eventResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/notes [post].
func (h *TimelineHandler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	e, err := h.TimelineService.AddNote(ctx, identityFromCtx(r), r.PathValue("id"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyNote):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Note content is required")
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
		default:
			slogx.FromContext(ctx).Error("failed to add note", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to add note")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toEventResponse(e))
}
