/*
store.go - Persistence interfaces for the ledger service

PURPOSE:
  Defines the storage contract the service depends on. The service accepts
  interfaces; implementations live in store/sqlite (production) and
  store/memory (tests/dev).

COLLECTIONS:
  balance          singleton, full replace via credit/debit
  ticket_types     read all ordered by name, write by id
  tickets          read all joined with types, batch insert, batch consume
  global_pin       singleton upsert
  payment_settings singleton upsert
  recharges        append-only log, unique session id

TRANSACTIONS:
  WithTx runs fn against a transactional view of the store. Everything fn
  writes commits together or not at all. Purchase (debit + N inserts) and
  consume (N updates) must run inside WithTx so a crash or conflicting
  request cannot leave balance and tickets disagreeing.

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
  - store/memory/memory.go: In-memory implementation
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - per-collection access
// =============================================================================

type Store interface {
	// Balance returns the singleton balance amount.
	Balance(ctx context.Context) (decimal.Decimal, error)

	// CreditBalance adds amount and returns the new balance.
	CreditBalance(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)

	// DebitBalance subtracts amount and returns the new balance. Fails with
	// ErrInsufficientBalance if the result would be negative; the balance
	// is left unchanged.
	DebitBalance(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)

	// TicketTypes returns all catalog entries ordered by name.
	TicketTypes(ctx context.Context) ([]TicketType, error)

	// TicketType returns one catalog entry, or nil if absent.
	TicketType(ctx context.Context, id TicketTypeID) (*TicketType, error)

	// SaveTicketType inserts or overwrites a catalog entry.
	SaveTicketType(ctx context.Context, t TicketType) error

	// Tickets returns every ticket, newest first, joined with its type.
	Tickets(ctx context.Context) ([]Ticket, error)

	// UnconsumedTickets returns unconsumed tickets of one type, or of all
	// types when typeID is empty.
	UnconsumedTickets(ctx context.Context, typeID TicketTypeID) ([]Ticket, error)

	// InsertTickets creates the given tickets.
	InsertTickets(ctx context.Context, tickets []Ticket) error

	// ConsumeTickets marks the given tickets consumed at the given time and
	// returns how many rows actually transitioned. Already-consumed tickets
	// are excluded from the count, never double-counted.
	ConsumeTickets(ctx context.Context, ids []TicketID, at time.Time) (int, error)

	// PinHash returns the stored PIN hash, or "" when not configured.
	PinHash(ctx context.Context) (string, error)

	// SavePinHash overwrites the singleton PIN hash.
	SavePinHash(ctx context.Context, hash string) error

	// PaymentSettings returns the provider settings (zero value if unset).
	PaymentSettings(ctx context.Context) (PaymentSettings, error)

	// SavePaymentSettings overwrites the provider settings.
	SavePaymentSettings(ctx context.Context, s PaymentSettings) error

	// RecordRecharge appends to the recharge log. Fails with
	// ErrDuplicateSession when the session id was already recorded.
	RecordRecharge(ctx context.Context, r Recharge) error

	// Recharges returns the full recharge log, newest first.
	Recharges(ctx context.Context) ([]Recharge, error)
}

// =============================================================================
// TX STORE - multi-record atomicity
// =============================================================================

// TxStore is a Store whose multi-record mutations can be made atomic.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view. If fn returns an
	// error, nothing fn wrote is visible afterwards.
	WithTx(ctx context.Context, fn func(Store) error) error
}
