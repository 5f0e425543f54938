// Package memory provides an in-memory ledger.TxStore for testing/dev.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/ticket-kiosk/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Store keeps all collections in maps. WithTx is simulated with a snapshot
// restored on error, so service-level atomicity tests work against it.
type Store struct {
	mu       sync.RWMutex
	balance  decimal.Decimal
	types    map[ledger.TicketTypeID]ledger.TicketType
	tickets  map[ledger.TicketID]ledger.Ticket
	pinHash  string
	payment  ledger.PaymentSettings
	log      []ledger.Recharge
	sessions map[string]bool
}

func New() *Store {
	return &Store{
		balance:  decimal.Zero,
		types:    make(map[ledger.TicketTypeID]ledger.TicketType),
		tickets:  make(map[ledger.TicketID]ledger.Ticket),
		sessions: make(map[string]bool),
	}
}

// =============================================================================
// BALANCE
// =============================================================================

func (m *Store) Balance(_ context.Context) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance, nil
}

func (m *Store) CreditBalance(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustLocked(amount)
}

func (m *Store) DebitBalance(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustLocked(amount.Neg())
}

func (m *Store) adjustLocked(delta decimal.Decimal) (decimal.Decimal, error) {
	next := m.balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, ledger.ErrInsufficientBalance
	}
	m.balance = next
	return next, nil
}

// =============================================================================
// TICKET TYPES
// =============================================================================

func (m *Store) TicketTypes(_ context.Context) ([]ledger.TicketType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := make([]ledger.TicketType, 0, len(m.types))
	for _, t := range m.types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (m *Store) TicketType(_ context.Context, id ledger.TicketTypeID) (*ledger.TicketType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.types[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Store) SaveTicketType(_ context.Context, t ledger.TicketType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[t.ID] = t
	return nil
}

// =============================================================================
// TICKETS
// =============================================================================

func (m *Store) Tickets(_ context.Context) ([]ledger.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterLocked(func(t ledger.Ticket) bool { return true }, true), nil
}

func (m *Store) UnconsumedTickets(_ context.Context, typeID ledger.TicketTypeID) ([]ledger.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterLocked(func(t ledger.Ticket) bool {
		return !t.Consumed && (typeID == "" || t.TypeID == typeID)
	}, false), nil
}

func (m *Store) filterLocked(keep func(ledger.Ticket) bool, newestFirst bool) []ledger.Ticket {
	var tickets []ledger.Ticket
	for _, t := range m.tickets {
		if keep(t) {
			if tt, ok := m.types[t.TypeID]; ok {
				ttCopy := tt
				t.Type = &ttCopy
			}
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].PurchasedAt.Equal(tickets[j].PurchasedAt) {
			return tickets[i].ID < tickets[j].ID
		}
		if newestFirst {
			return tickets[i].PurchasedAt.After(tickets[j].PurchasedAt)
		}
		return tickets[i].PurchasedAt.Before(tickets[j].PurchasedAt)
	})
	return tickets
}

func (m *Store) InsertTickets(_ context.Context, tickets []ledger.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tickets {
		t.Type = nil
		m.tickets[t.ID] = t
	}
	return nil
}

func (m *Store) ConsumeTickets(_ context.Context, ids []ledger.TicketID, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	consumed := 0
	for _, id := range ids {
		t, ok := m.tickets[id]
		if !ok || t.Consumed {
			continue
		}
		atCopy := at
		t.Consumed = true
		t.ConsumedAt = &atCopy
		m.tickets[id] = t
		consumed++
	}
	return consumed, nil
}

// =============================================================================
// PIN / PAYMENT SETTINGS
// =============================================================================

func (m *Store) PinHash(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pinHash, nil
}

func (m *Store) SavePinHash(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinHash = hash
	return nil
}

func (m *Store) PaymentSettings(_ context.Context) (ledger.PaymentSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payment, nil
}

func (m *Store) SavePaymentSettings(_ context.Context, s ledger.PaymentSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payment = s
	return nil
}

// =============================================================================
// RECHARGE LOG
// =============================================================================

func (m *Store) RecordRecharge(_ context.Context, r ledger.Recharge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.SessionID != "" {
		if m.sessions[r.SessionID] {
			return ledger.ErrDuplicateSession
		}
		m.sessions[r.SessionID] = true
	}
	m.log = append(m.log, r)
	return nil
}

func (m *Store) Recharges(_ context.Context) ([]ledger.Recharge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.Recharge, len(m.log))
	copy(out, m.log)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// TRANSACTIONS - snapshot + rollback
// =============================================================================

// WithTx executes fn against the store directly and restores a snapshot on
// error. The mutex is NOT held across fn; the txView methods lock normally,
// matching the single-logical-writer model the service assumes.
func (m *Store) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	snap := m.snapshot()
	if err := fn(&txView{m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type txView struct {
	*Store
}

// WithTx on the view is not supported; transactions do not nest.
func (v *txView) WithTx(context.Context, func(ledger.Store) error) error {
	panic("nested transaction")
}

type stateSnapshot struct {
	balance  decimal.Decimal
	types    map[ledger.TicketTypeID]ledger.TicketType
	tickets  map[ledger.TicketID]ledger.Ticket
	pinHash  string
	payment  ledger.PaymentSettings
	log      []ledger.Recharge
	sessions map[string]bool
}

func (m *Store) snapshot() stateSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := make(map[ledger.TicketTypeID]ledger.TicketType, len(m.types))
	for k, v := range m.types {
		types[k] = v
	}
	tickets := make(map[ledger.TicketID]ledger.Ticket, len(m.tickets))
	for k, v := range m.tickets {
		tickets[k] = v
	}
	sessions := make(map[string]bool, len(m.sessions))
	for k, v := range m.sessions {
		sessions[k] = v
	}
	log := make([]ledger.Recharge, len(m.log))
	copy(log, m.log)

	return stateSnapshot{
		balance:  m.balance,
		types:    types,
		tickets:  tickets,
		pinHash:  m.pinHash,
		payment:  m.payment,
		log:      log,
		sessions: sessions,
	}
}

func (m *Store) restore(s stateSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balance = s.balance
	m.types = s.types
	m.tickets = s.tickets
	m.pinHash = s.pinHash
	m.payment = s.payment
	m.log = s.log
	m.sessions = s.sessions
}
