/*
Package ledger provides the core balance/ticket service for the kiosk.

PURPOSE:
  This package contains the domain types and the service that owns the
  invariants connecting the prepaid balance, the ticket catalog, and ticket
  consumption state. Everything the kiosk sells or redeems flows through
  here; the HTTP layer and the payment bridge are thin adapters around it.

KEY CONCEPTS IN THIS FILE (types.go):
  - TicketType: catalog entry defining a ticket's value and display attributes
  - Ticket: one redeemable unit of fixed value, individually tracked
  - Recharge: one balance credit, keyed by checkout session for dedup
  - Metrics: derived sales counters, never stored

DESIGN PRINCIPLES:
  1. Precision: money is decimal.Decimal, never float64
  2. Irreversibility: tickets only move unconsumed -> consumed, rows are
     never deleted
  3. Atomicity: multi-record mutations run inside a single store transaction

SEE ALSO:
  - service.go: Operations over these types
  - store.go: Persistence interfaces
  - errors.go: Error taxonomy
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TicketTypeID string
type TicketID string

func NewTicketTypeID() TicketTypeID { return TicketTypeID(uuid.NewString()) }
func NewTicketID() TicketID         { return TicketID(uuid.NewString()) }

// =============================================================================
// CATALOG
// =============================================================================

// TicketType is an admin-configured catalog entry. Deactivating a type hides
// it from purchase but does not affect already-issued tickets.
type TicketType struct {
	ID        TicketTypeID
	Name      string
	Value     decimal.Decimal // unit price, strictly positive
	Active    bool
	Color     string // optional display tag, opaque to the service
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// TICKETS
// =============================================================================

// Ticket is one purchased unit. Tickets are individually addressable: a
// purchase of quantity N creates N rows, each independently consumable.
type Ticket struct {
	ID          TicketID
	TypeID      TicketTypeID
	Consumed    bool
	PurchasedAt time.Time
	ConsumedAt  *time.Time

	// Type is the joined catalog entry, populated on reads. May be nil on
	// writes.
	Type *TicketType
}

// =============================================================================
// RECHARGES
// =============================================================================

type RechargeSource string

const (
	// SourcePayment is a recharge confirmed by the payment provider. It must
	// carry a session id and is applied at most once per session.
	SourcePayment RechargeSource = "payment"

	// SourceSimulated is an admin-triggered credit with no external payment.
	// Simulated recharges are never deduplicated.
	SourceSimulated RechargeSource = "simulated"
)

// Recharge is one balance credit. The log doubles as the dedup record for
// payment sessions and as the source for revenue metrics.
type Recharge struct {
	ID        string
	SessionID string // empty for simulated recharges
	Amount    decimal.Decimal
	Source    RechargeSource
	CreatedAt time.Time
}

// =============================================================================
// SETTINGS
// =============================================================================

// PaymentSettings configures the external checkout provider.
type PaymentSettings struct {
	PublishableKey string
	PriceID        string
}

// =============================================================================
// OPERATION INPUTS / RESULTS
// =============================================================================

// OrderLine is one (type, quantity) pair of a purchase order.
type OrderLine struct {
	TypeID   TicketTypeID
	Quantity int // >= 1
}

type RechargeResult struct {
	NewBalance decimal.Decimal
	// Duplicate is true when the session id was already credited; the
	// recharge was a no-op and NewBalance is the current balance.
	Duplicate bool
}

type PurchaseResult struct {
	TicketsIssued int
	TotalCost     decimal.Decimal
	NewBalance    decimal.Decimal
}

type ConsumeResult struct {
	Consumed int
}

// Snapshot is the full client-visible state, re-derived from the store after
// every mutation. The service never caches authoritative state.
type Snapshot struct {
	Balance       decimal.Decimal
	TicketTypes   []TicketType // ordered by name
	Tickets       []Ticket     // newest first, joined with types
	PinConfigured bool
	Payment       PaymentSettings
}

// =============================================================================
// METRICS - derived, never stored
// =============================================================================

// Metrics are computed by scanning the ticket and recharge collections at
// read time, so they cannot drift from record state.
type Metrics struct {
	TicketsPurchased int
	TicketsConsumed  int
	RechargeCount    int
	TotalRevenue     decimal.Decimal
	ByType           []TypeMetrics
}

// TypeMetrics is the per-catalog-entry breakdown.
type TypeMetrics struct {
	TypeID    TicketTypeID
	Name      string
	Purchased int
	Consumed  int
}
