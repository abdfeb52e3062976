package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

type ClientsHandler struct {
	ClientService *service.ClientService
}

type clientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code"`
	DateOfBirth string `json:"date_of_birth"`
	Status      string `json:"status"`
}

func (req clientRequest) toDomain() domain.Client {
	return domain.Client{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
		DateOfBirth: req.DateOfBirth,
		Status:      req.Status,
	}
}

func identityFromCtx(r *http.Request) domain.Identity {
	ctx := r.Context()
	return domain.Identity{
		ID:       httpx.UserIDFromCtx(ctx),
		Email:    httpx.EmailFromCtx(ctx),
		TenantID: httpx.TenantIDFromCtx(ctx),
		Role:     httpx.RoleFromCtx(ctx),
	}
}

// HandleCreate godoc
//
//	@Summary		Create a client or lead
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			request	body		clientRequest	true	"Client fields"
//	@Success		201		{object}	clientResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	c, err := h.ClientService.Create(ctx, identityFromCtx(r), req.toDomain())
	if err != nil {
		if errors.Is(err, service.ErrInvalidClientInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "A name and a valid status are required")
			return
		}
		slogx.FromContext(ctx).Error("failed to create client", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create client")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toClientResponse(c))
}

// HandleList godoc
//
//	@Summary		List clients
//	@Description	Filtered, paginated client list with per-client policy counts and next renewal dates.
//	@Tags			Clients
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status (lead or client)"
//	@Param			search	query		string	false	"Match against name, email or phone"
//	@Param			page	query		int		false	"Page number (1-based)"
//	@Param			limit	query		int		false	"Page size (max 100)"
//	@Success		200		{object}	clientPageResponse
//	@Security		BearerAuth
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	q := domain.ClientSearch{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.ClientService.Search(ctx, httpx.TenantIDFromCtx(ctx), q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClientInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Unknown status filter")
			return
		}
		slogx.FromContext(ctx).Error("failed to search clients", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list clients")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientPageResponse(result))
}

// HandleGet godoc
//
//	@Summary	Get a client
//	@Tags		Clients
//	@Produce	json
//	@Param		id	path		string	true	"Client id"
//	@Success	200	{object}	clientResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.ClientService.Get(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to get client", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to get client")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(c))
}

// HandleUpdate godoc
//
//	@Summary	Update a client
//	@Tags		Clients
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Client id"
//	@Param		request	body		clientRequest	true	"Client fields"
//	@Success	200		{object}	clientResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	c := req.toDomain()
	c.ID = r.PathValue("id")

	updated, err := h.ClientService.Update(ctx, httpx.TenantIDFromCtx(ctx), c)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
		case errors.Is(err, service.ErrInvalidClientInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid client fields")
		default:
			slogx.FromContext(ctx).Error("failed to update client", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update client")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(updated))
}

// HandleDelete godoc
//
//	@Summary	Delete a client
//	@Tags		Clients
//	@Param		id	path	string	true	"Client id"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.ClientService.Delete(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to delete client", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete client")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleConvert godoc
//
//	@Summary		Convert a lead to a client
//	@Description	Promotes a lead to an active client and records the conversion on the timeline.
//	@Tags			Clients
//	@Produce		json
//	@Param			id	path		string	true	"Client id"
//	@Success		200	{object}	clientResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Failure		409	{object}	httpx.ErrorResponse	"already_client"
//	@Security		BearerAuth
//	@Router			/v1/clients/{id}/convert [post].
func (h *ClientsHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.ClientService.Convert(ctx, identityFromCtx(r), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
		case errors.Is(err, service.ErrClientAlreadyActive):
			httpx.WriteError(w, http.StatusConflict, "already_client", "This client has already been converted")
		default:
			slogx.FromContext(ctx).Error("failed to convert client", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to convert client")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(c))
}
