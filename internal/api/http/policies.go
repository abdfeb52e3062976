package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

type PoliciesHandler struct {
	PolicyService *service.PolicyService
}

type policyRequest struct {
	Type             string     `json:"type"`
	CustomType       string     `json:"custom_type"`
	Carrier          string     `json:"carrier"`
	PolicyNumber     string     `json:"policy_number"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Premium          string     `json:"premium"`
	CoverageAmount   string     `json:"coverage_amount"`
	Deductible       string     `json:"deductible"`
	PaymentFrequency string     `json:"payment_frequency"`
	BrokerCommission string     `json:"broker_commission"`
	Status           string     `json:"status"`
	Notes            string     `json:"notes"`
}

func (req policyRequest) toDomain() domain.Policy {
	return domain.Policy{
		Type:             req.Type,
		CustomType:       req.CustomType,
		Carrier:          req.Carrier,
		PolicyNumber:     req.PolicyNumber,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Premium:          req.Premium,
		CoverageAmount:   req.CoverageAmount,
		Deductible:       req.Deductible,
		PaymentFrequency: req.PaymentFrequency,
		BrokerCommission: req.BrokerCommission,
		Status:           req.Status,
		Notes:            req.Notes,
	}
}

// HandleCreateForClient godoc
//
//	@Summary	Create a policy under a client
//	@Tags		Policies
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Client id"
//	@Param		request	body		policyRequest	true	"Policy fields"
//	@Success	201		{object}	policyResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/clients/{id}/policies [post].
func (h *PoliciesHandler) HandleCreateForClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	p, err := h.PolicyService.Create(ctx, identityFromCtx(r), r.PathValue("id"), req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
		case errors.Is(err, service.ErrInvalidPolicyInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid policy fields")
		default:
			slogx.FromContext(ctx).Error("failed to create policy", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create policy")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toPolicyResponse(p))
}

// HandleListForClient godoc
//
//	@Summary	List a client's policies
//	@Tags		Policies
//	@Produce	json
//	@Param		id	path		string	true	"Client id"
//	@Success	200	{array}		policyResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/clients/{id}/policies [get].
func (h *PoliciesHandler) HandleListForClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policies, err := h.PolicyService.ListByClient(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Client not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to list policies", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list policies")
		return
	}

	out := make([]policyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, toPolicyResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary	Get a policy
//	@Tags		Policies
//	@Produce	json
//	@Param		id	path		string	true	"Policy id"
//	@Success	200	{object}	policyResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/policies/{id} [get].
func (h *PoliciesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.PolicyService.Get(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrPolicyNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Policy not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to get policy", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to get policy")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPolicyResponse(p))
}

// HandleUpdate godoc
//
//	@Summary	Update a policy
//	@Tags		Policies
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Policy id"
//	@Param		request	body		policyRequest	true	"Policy fields"
//	@Success	200		{object}	policyResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/policies/{id} [put].
func (h *PoliciesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	p := req.toDomain()
	p.ID = r.PathValue("id")

	updated, err := h.PolicyService.Update(ctx, identityFromCtx(r), p)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPolicyNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Policy not found")
		case errors.Is(err, service.ErrInvalidPolicyInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid policy fields")
		default:
			slogx.FromContext(ctx).Error("failed to update policy", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update policy")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPolicyResponse(updated))
}

// HandleDelete godoc
//
//	@Summary	Delete a policy
//	@Tags		Policies
//	@Param		id	path	string	true	"Policy id"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/policies/{id} [delete].
func (h *PoliciesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.PolicyService.Delete(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrPolicyNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Policy not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to delete policy", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete policy")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
