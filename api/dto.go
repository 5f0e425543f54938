/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through Handler.validate before touching the service. Money crosses
  the JSON boundary as float64 and is converted to decimal immediately.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/ticket-kiosk/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// RechargeRequest credits the balance (simulated or checkout initiation).
type RechargeRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// OrderLineRequest is one (type, quantity) pair of a purchase.
type OrderLineRequest struct {
	TypeID   string `json:"type_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// PurchaseRequest buys tickets against the balance.
type PurchaseRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ConsumeRequest authorizes a consumption operation.
type ConsumeRequest struct {
	Pin string `json:"pin" validate:"required,len=4,numeric"`
}

// UpdatePinRequest replaces the global redemption PIN.
type UpdatePinRequest struct {
	Pin string `json:"pin" validate:"required,len=4,numeric"`
}

// TicketTypeRequest creates or overwrites a catalog entry.
type TicketTypeRequest struct {
	Name   string  `json:"name" validate:"required"`
	Value  float64 `json:"value" validate:"required,gt=0"`
	Active bool    `json:"active"`
	Color  string  `json:"color"`
}

// PaymentSettingsRequest overwrites the provider configuration.
type PaymentSettingsRequest struct {
	PublishableKey string `json:"publishable_key"`
	PriceID        string `json:"price_id"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type BalanceDTO struct {
	Amount float64 `json:"amount"`
}

type TicketTypeDTO struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Active bool    `json:"active"`
	Color  string  `json:"color,omitempty"`
}

type TicketDTO struct {
	ID          string  `json:"id"`
	TypeID      string  `json:"type_id"`
	TypeName    string  `json:"type_name,omitempty"`
	Value       float64 `json:"value"`
	Consumed    bool    `json:"consumed"`
	PurchasedAt string  `json:"purchased_at"`
	ConsumedAt  string  `json:"consumed_at,omitempty"`
}

type SnapshotDTO struct {
	Balance       float64         `json:"balance"`
	TicketTypes   []TicketTypeDTO `json:"ticket_types"`
	Tickets       []TicketDTO     `json:"tickets"`
	PinConfigured bool            `json:"pin_configured"`
	Payment       PaymentDTO      `json:"payment"`
}

// PaymentDTO exposes only the publishable half of the settings plus
// whether checkout is usable.
type PaymentDTO struct {
	PublishableKey string `json:"publishable_key"`
	Configured     bool   `json:"configured"`
}

type RechargeResponse struct {
	NewBalance float64 `json:"new_balance"`
	Duplicate  bool    `json:"duplicate"`
}

type PurchaseResponse struct {
	TicketsIssued int     `json:"tickets_issued"`
	TotalCost     float64 `json:"total_cost"`
	NewBalance    float64 `json:"new_balance"`
}

type ConsumeResponse struct {
	Consumed int `json:"consumed"`
}

type VerifyPinResponse struct {
	Valid bool `json:"valid"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type MetricsDTO struct {
	TicketsPurchased int              `json:"tickets_purchased"`
	TicketsConsumed  int              `json:"tickets_consumed"`
	RechargeCount    int              `json:"recharge_count"`
	TotalRevenue     float64          `json:"total_revenue"`
	ByType           []TypeMetricsDTO `json:"by_type"`
}

type TypeMetricsDTO struct {
	TypeID    string `json:"type_id"`
	Name      string `json:"name"`
	Purchased int    `json:"purchased"`
	Consumed  int    `json:"consumed"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTicketTypeDTO(t ledger.TicketType) TicketTypeDTO {
	return TicketTypeDTO{
		ID:     string(t.ID),
		Name:   t.Name,
		Value:  t.Value.InexactFloat64(),
		Active: t.Active,
		Color:  t.Color,
	}
}

func toTicketDTO(t ledger.Ticket) TicketDTO {
	dto := TicketDTO{
		ID:          string(t.ID),
		TypeID:      string(t.TypeID),
		Consumed:    t.Consumed,
		PurchasedAt: t.PurchasedAt.Format(time.RFC3339),
	}
	if t.Type != nil {
		dto.TypeName = t.Type.Name
		dto.Value = t.Type.Value.InexactFloat64()
	}
	if t.ConsumedAt != nil {
		dto.ConsumedAt = t.ConsumedAt.Format(time.RFC3339)
	}
	return dto
}

func toSnapshotDTO(s ledger.Snapshot) SnapshotDTO {
	types := make([]TicketTypeDTO, len(s.TicketTypes))
	for i, t := range s.TicketTypes {
		types[i] = toTicketTypeDTO(t)
	}
	tickets := make([]TicketDTO, len(s.Tickets))
	for i, t := range s.Tickets {
		tickets[i] = toTicketDTO(t)
	}
	return SnapshotDTO{
		Balance:       s.Balance.InexactFloat64(),
		TicketTypes:   types,
		Tickets:       tickets,
		PinConfigured: s.PinConfigured,
		Payment: PaymentDTO{
			PublishableKey: s.Payment.PublishableKey,
			Configured:     s.Payment.PriceID != "",
		},
	}
}

func toMetricsDTO(m ledger.Metrics) MetricsDTO {
	byType := make([]TypeMetricsDTO, len(m.ByType))
	for i, tm := range m.ByType {
		byType[i] = TypeMetricsDTO{
			TypeID:    string(tm.TypeID),
			Name:      tm.Name,
			Purchased: tm.Purchased,
			Consumed:  tm.Consumed,
		}
	}
	return MetricsDTO{
		TicketsPurchased: m.TicketsPurchased,
		TicketsConsumed:  m.TicketsConsumed,
		RechargeCount:    m.RechargeCount,
		TotalRevenue:     m.TotalRevenue.InexactFloat64(),
		ByType:           byType,
	}
}

func amountFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
