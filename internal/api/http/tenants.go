package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

type TenantsHandler struct {
	TenantService *service.TenantService
}

// HandleCurrent godoc
//
//	@Summary	Get the current agency
//	@Tags		Tenants
//	@Produce	json
//	@Success	200	{object}	tenantResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/tenants/current [get].
func (h *TenantsHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := h.TenantService.Current(ctx, httpx.TenantIDFromCtx(ctx))
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Agency not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to get tenant", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to get agency")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}

type updateTenantRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Province string `json:"province"`
}

// HandleUpdate godoc
//
//	@Summary		Update the current agency
//	@Description	Writes the agency's profile fields. The slug is fixed at creation.
//	@Tags			Tenants
//	@Accept			json
//	@Produce		json
//	@Param			request	body		updateTenantRequest	true	"Agency fields"
//	@Success		200		{object}	tenantResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/tenants/current [put].
func (h *TenantsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Agency name is required")
		return
	}

	t, err := h.TenantService.Update(ctx, domain.Tenant{
		ID:       httpx.TenantIDFromCtx(ctx),
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Province: req.Province,
	})
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Agency not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to update tenant", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update agency")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTenantResponse(t))
}
