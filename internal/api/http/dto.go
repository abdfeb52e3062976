package http

import (
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
)

// Response DTOs. Domain structs stay JSON-free; handlers convert at the
// boundary.

type tenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Province  string    `json:"province,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTenantResponse(t domain.Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Phone:     t.Phone,
		Address:   t.Address,
		Province:  t.Province,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type inviterResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type invitationResponse struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	Status    string           `json:"status"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
	InvitedBy *inviterResponse `json:"invited_by,omitempty"`
}

func toInvitationResponse(inv domain.Invitation) invitationResponse {
	return invitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
}

func toInvitationListResponse(items []domain.InvitationWithInviter) []invitationResponse {
	out := make([]invitationResponse, 0, len(items))
	for _, item := range items {
		resp := toInvitationResponse(item.Invitation)
		resp.InvitedBy = &inviterResponse{
			ID:        item.InvitedBy.ID,
			FirstName: item.InvitedBy.FirstName,
			LastName:  item.InvitedBy.LastName,
			Email:     item.InvitedBy.Email,
		}
		out = append(out, resp)
	}
	return out
}

type clientResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	Province    string    `json:"province,omitempty"`
	PostalCode  string    `json:"postal_code,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toClientResponse(c domain.Client) clientResponse {
	return clientResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		Province:    c.Province,
		PostalCode:  c.PostalCode,
		DateOfBirth: c.DateOfBirth,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type clientListItemResponse struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Status          string     `json:"status"`
	PolicyCount     int        `json:"policy_count"`
	NextRenewalDate *time.Time `json:"next_renewal_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type clientPageResponse struct {
	Items []clientListItemResponse `json:"items"`
	Total int                      `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

func toClientPageResponse(p domain.ClientPage) clientPageResponse {
	out := clientPageResponse{
		Items: make([]clientListItemResponse, 0, len(p.Items)),
		Total: p.Total,
		Page:  p.Page,
		Limit: p.Limit,
	}
	for _, item := range p.Items {
		out.Items = append(out.Items, clientListItemResponse{
			ID:              item.ID,
			FirstName:       item.FirstName,
			LastName:        item.LastName,
			Email:           item.Email,
			Phone:           item.Phone,
			Status:          item.Status,
			PolicyCount:     item.PolicyCount,
			NextRenewalDate: item.NextRenewalDate,
			CreatedAt:       item.CreatedAt,
		})
	}
	return out
}

type policyResponse struct {
	ID               string     `json:"id"`
	ClientID         string     `json:"client_id"`
	Type             string     `json:"type"`
	CustomType       string     `json:"custom_type,omitempty"`
	Carrier          string     `json:"carrier,omitempty"`
	PolicyNumber     string     `json:"policy_number,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	Premium          string     `json:"premium,omitempty"`
	CoverageAmount   string     `json:"coverage_amount,omitempty"`
	Deductible       string     `json:"deductible,omitempty"`
	PaymentFrequency string     `json:"payment_frequency,omitempty"`
	BrokerCommission string     `json:"broker_commission,omitempty"`
	Status           string     `json:"status"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toPolicyResponse(p domain.Policy) policyResponse {
	return policyResponse{
		ID:               p.ID,
		ClientID:         p.ClientID,
		Type:             p.Type,
		CustomType:       p.CustomType,
		Carrier:          p.Carrier,
		PolicyNumber:     p.PolicyNumber,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		Premium:          p.Premium,
		CoverageAmount:   p.CoverageAmount,
		Deductible:       p.Deductible,
		PaymentFrequency: p.PaymentFrequency,
		BrokerCommission: p.BrokerCommission,
		Status:           p.Status,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type eventResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	ActorID   string    `json:"actor_id"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		ClientID:  e.ClientID,
		ActorID:   e.ActorID,
		Kind:      e.Kind,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}

type eventPageResponse struct {
	Items []eventResponse `json:"items"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func toEventPageResponse(p domain.EventPage) eventPageResponse {
	out := eventPageResponse{
		Items: make([]eventResponse, 0, len(p.Items)),
		Total: p.Total,
		Page:  p.Page,
		Limit: p.Limit,
	}
	for _, e := range p.Items {
		out.Items = append(out.Items, toEventResponse(e))
	}
	return out
}

type taskResponse struct {
	ID        string     `json:"id"`
	ClientID  string     `json:"client_id,omitempty"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Priority  string     `json:"priority"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:        t.ID,
		ClientID:  t.ClientID,
		Title:     t.Title,
		DueDate:   t.DueDate,
		Priority:  t.Priority,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
