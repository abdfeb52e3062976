package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/metrics"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

type InvitationsHandler struct {
	InvitationService *service.InvitationService
	Metrics           *metrics.APIMetrics
}

type createInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleCreate godoc
//
//	@Summary		Invite a team member
//	@Description	Creates a pending invitation and delivers an invite email through the identity provider. Each agency may hold at most 2 pending or accepted invitations.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createInvitationRequest	true	"Invitation request"
//	@Success		201		{object}	invitationResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_request"
//	@Failure		409		{object}	httpx.ErrorResponse	"duplicate_pending"
//	@Failure		422		{object}	httpx.ErrorResponse	"capacity_exceeded"
//	@Failure		502		{object}	httpx.ErrorResponse	"delivery_failed"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	inviter := domain.Identity{
		ID:       httpx.UserIDFromCtx(ctx),
		Email:    httpx.EmailFromCtx(ctx),
		TenantID: httpx.TenantIDFromCtx(ctx),
		Role:     httpx.RoleFromCtx(ctx),
	}

	inv, err := h.InvitationService.Invite(ctx, inviter, req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "A valid email is required")
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Role must be admin or agent")
		case errors.Is(err, service.ErrDuplicatePending):
			httpx.WriteError(w, http.StatusConflict, "duplicate_pending", "A pending invitation already exists for this email")
		case errors.Is(err, service.ErrCapacityExceeded):
			httpx.WriteError(w, http.StatusUnprocessableEntity, "capacity_exceeded", "Your agency has reached its invitation limit")
		case errors.Is(err, service.ErrDeliveryFailed):
			h.Metrics.InvitationsTotal.WithLabelValues("delivery_failed").Inc()
			httpx.WriteError(w, http.StatusBadGateway, "delivery_failed", "The invite email could not be delivered")
		default:
			log.Error("failed to create invitation", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create invitation")
		}
		return
	}

	h.Metrics.InvitationsTotal.WithLabelValues("created").Inc()
	httpx.WriteJSON(w, http.StatusCreated, toInvitationResponse(inv))
}

// HandleList godoc
//
//	@Summary		List invitations
//	@Description	Lists the agency's invitations newest first. Pending invitations past their expiry are reported as expired.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200	{array}		invitationResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.InvitationService.List(ctx, httpx.TenantIDFromCtx(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invitations", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list invitations")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toInvitationListResponse(items))
}

// HandleRevoke godoc
//
//	@Summary		Revoke an invitation
//	@Description	Withdraws a pending invitation. Accepted or already revoked invitations cannot be revoked.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path	string	true	"Invitation id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorResponse	"not_found"
//	@Failure		409	{object}	httpx.ErrorResponse	"invalid_state"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id} [delete].
func (h *InvitationsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.InvitationService.Revoke(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Invitation not found")
		case errors.Is(err, service.ErrInvalidState):
			httpx.WriteError(w, http.StatusConflict, "invalid_state", "Only pending invitations can be revoked")
		default:
			slogx.FromContext(ctx).Error("failed to revoke invitation", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to revoke invitation")
		}
		return
	}

	h.Metrics.InvitationsTotal.WithLabelValues("revoked").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// HandleResend godoc
//
//	@Summary		Resend an invitation
//	@Description	Refreshes a pending or expired invitation with a new expiry window and re-delivers the invite email.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Invitation id"
//	@Success		200	{object}	invitationResponse
//	@Failure		404	{object}	httpx.ErrorResponse	"not_found"
//	@Failure		409	{object}	httpx.ErrorResponse	"invalid_state"
//	@Failure		502	{object}	httpx.ErrorResponse	"delivery_failed"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/resend [post].
func (h *InvitationsHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, err := h.InvitationService.Resend(ctx, httpx.TenantIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Invitation not found")
		case errors.Is(err, service.ErrInvalidState):
			httpx.WriteError(w, http.StatusConflict, "invalid_state", "Only pending or expired invitations can be resent")
		case errors.Is(err, service.ErrDeliveryFailed):
			httpx.WriteError(w, http.StatusBadGateway, "delivery_failed", "The invite email could not be delivered")
		default:
			slogx.FromContext(ctx).Error("failed to resend invitation", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to resend invitation")
		}
		return
	}

	h.Metrics.InvitationsTotal.WithLabelValues("resent").Inc()
	httpx.WriteJSON(w, http.StatusOK, toInvitationResponse(inv))
}

type acceptInvitationRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// HandleAccept godoc
//
//	@Summary		Accept an invitation
//	@Description	Completes signup for an invited user. The newest pending invitation matching the caller's verified email is accepted and a member record is created under the inviting agency.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		acceptInvitationRequest	false	"Profile fields"
//	@Success		200		{object}	invitationResponse
//	@Success		204		"no pending invitation for this email"
//	@Failure		409		{object}	httpx.ErrorResponse	"invalid_state"
//	@Security		BearerAuth
//	@Router			/v1/invitations/accept [post].
func (h *InvitationsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req acceptInvitationRequest
	if r.Body != nil {
		// Profile fields are optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	inv, ok, err := h.InvitationService.Accept(ctx,
		httpx.UserIDFromCtx(ctx), httpx.EmailFromCtx(ctx),
		req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidState):
			httpx.WriteError(w, http.StatusConflict, "invalid_state", "The invitation has expired")
		default:
			slogx.FromContext(ctx).Error("failed to accept invitation", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to accept invitation")
		}
		return
	}

	if !ok {
		// Nothing to accept; the caller simply signed up uninvited.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.Metrics.InvitationsTotal.WithLabelValues("accepted").Inc()
	httpx.WriteJSON(w, http.StatusOK, toInvitationResponse(inv))
}
