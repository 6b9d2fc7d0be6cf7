package handler

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/rentflow/backend/internal/application/identity"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/domain/tenancy"
	"github.com/rentflow/backend/internal/interfaces/http/dto"
)

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// UserResponse is a user profile
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
	Roles []string  `json:"roles"`
}

// PropertyResponse is a property with its owners
type PropertyResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	OwnerIDs  []uuid.UUID `json:"owner_ids"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TenancyResponse is a tenancy, optionally with its tenant profile
type TenancyResponse struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"user_id"`
	PropertyID       uuid.UUID         `json:"property_id"`
	FixedMonthlyRent valueobject.Money `json:"fixed_monthly_rent" swaggertype:"number"`
	PaysUtilities    bool              `json:"pays_utilities"`
	StartDate        string            `json:"start_date" example:"2024-01-01"`
	EndDate          *string           `json:"end_date,omitempty"`
	Active           bool              `json:"active"`
	Tenant           *UserResponse     `json:"tenant,omitempty"`
}

// ExpenseResponse is a property expense
type ExpenseResponse struct {
	ID          uuid.UUID         `json:"id"`
	PropertyID  uuid.UUID         `json:"property_id"`
	Type        string            `json:"type" example:"FIXED_SERVICE"`
	Amount      valueobject.Money `json:"amount" swaggertype:"number"`
	Description string            `json:"description"`
	Date        string            `json:"date" example:"2024-03-15"`
}

// InvoiceResponse is a monthly invoice
type InvoiceResponse struct {
	ID                     uuid.UUID          `json:"id"`
	TenancyID              uuid.UUID          `json:"tenancy_id"`
	UserID                 uuid.UUID          `json:"user_id"`
	PropertyID             uuid.UUID          `json:"property_id"`
	Month                  string             `json:"month" example:"2024-03"`
	RentAmount             valueobject.Money  `json:"rent_amount" swaggertype:"number"`
	UtilitiesAmount        valueobject.Money  `json:"utilities_amount" swaggertype:"number"`
	TotalDue               valueobject.Money  `json:"total_due" swaggertype:"number"`
	RemainingBalance       valueobject.Money  `json:"remaining_balance" swaggertype:"number"`
	Status                 string             `json:"status" example:"pending"`
	SubmittedPaymentAmount *valueobject.Money `json:"submitted_payment_amount,omitempty" swaggertype:"number"`
	PaymentProofURL        *string            `json:"payment_proof_url,omitempty"`
	SubmissionDate         *time.Time         `json:"submission_date,omitempty"`
	PaymentDate            *time.Time         `json:"payment_date,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
}

// SessionResponse is the resolved role state of the caller
type SessionResponse struct {
	User              *UserResponse     `json:"user,omitempty"`
	ActiveRole        string            `json:"active_role"`
	AvailableRoles    []string          `json:"available_roles"`
	ProfileMissing    bool              `json:"profile_missing"`
	DisplayName       string            `json:"display_name"`
	Tenancies         []TenancyResponse `json:"tenancies"`
	CurrentTenancyID  *uuid.UUID        `json:"current_tenancy_id,omitempty"`
	RequiresSelection bool              `json:"requires_selection"`
}

const dateLayout = time.DateOnly

func toUserResponse(u *identity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Roles: u.Roles.Strings(),
	}
}

func toUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *toUserResponse(u))
	}
	return out
}

func toPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		OwnerIDs:  p.OwnerIDs,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPropertyResponses(props []*property.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

func toTenancyResponse(t *tenancy.Tenancy, tenant *identity.User) TenancyResponse {
	resp := TenancyResponse{
		ID:               t.ID,
		UserID:           t.UserID,
		PropertyID:       t.PropertyID,
		FixedMonthlyRent: t.FixedMonthlyRent,
		PaysUtilities:    t.PaysUtilities,
		StartDate:        t.StartDate.Format(dateLayout),
		Active:           t.Active,
		Tenant:           toUserResponse(tenant),
	}
	if t.EndDate != nil {
		end := t.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	return resp
}

func toTenancyResponses(tenancies []*tenancy.Tenancy, users map[uuid.UUID]*identity.User) []TenancyResponse {
	out := make([]TenancyResponse, 0, len(tenancies))
	for _, t := range tenancies {
		out = append(out, toTenancyResponse(t, users[t.UserID]))
	}
	return out
}

func toExpenseResponse(e *property.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		PropertyID:  e.PropertyID,
		Type:        e.Type.String(),
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date.Format(dateLayout),
	}
}

func toExpenseResponses(expenses []*property.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func toInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                     inv.ID,
		TenancyID:              inv.TenancyID,
		UserID:                 inv.UserID,
		PropertyID:             inv.PropertyID,
		Month:                  inv.Period.String(),
		RentAmount:             inv.RentAmount,
		UtilitiesAmount:        inv.UtilitiesAmount,
		TotalDue:               inv.TotalDue,
		RemainingBalance:       inv.RemainingBalance(),
		Status:                 inv.Status.String(),
		SubmittedPaymentAmount: inv.SubmittedPaymentAmount,
		PaymentProofURL:        inv.PaymentProofURL,
		SubmissionDate:         inv.SubmissionDate,
		PaymentDate:            inv.PaymentDate,
		CreatedAt:              inv.CreatedAt,
	}
}

func toInvoiceResponses(invoices []*billing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return out
}

func toSessionResponse(s *appidentity.Session) SessionResponse {
	tenancies := make([]TenancyResponse, 0, len(s.Tenancies))
	for _, t := range s.Tenancies {
		tenancies = append(tenancies, toTenancyResponse(t, nil))
	}
	return SessionResponse{
		User:              toUserResponse(s.User),
		ActiveRole:        s.Role().String(),
		AvailableRoles:    s.Resolution.AvailableRoles.Strings(),
		ProfileMissing:    s.Resolution.ProfileMissing,
		DisplayName:       s.DisplayName(),
		Tenancies:         tenancies,
		CurrentTenancyID:  s.CurrentTenancyID(),
		RequiresSelection: s.RequiresSelection,
	}
}
