/*
service.go - Balance/ticket operations

PURPOSE:
  The Service owns the invariants connecting balance, tickets, and
  consumption state:
  1. Balance never goes negative - purchases are rejected, not reported
  2. Purchase is all-or-nothing: debit + N ticket inserts in one transaction
  3. Consumption is PIN-gated and irreversible
  4. A payment session credits the balance at most once

OPERATIONS:
  RechargeBalance     credit the balance (payment-confirmed or simulated)
  PurchaseTickets     debit balance, issue tickets, atomically
  ConsumeTicketGroup  consume ALL unconsumed tickets of one type
  ConsumeAllAvailable consume every unconsumed ticket
  VerifyPin           check an attempt against the stored hash
  SaveTicketType / UpdateGlobalPin / UpdatePaymentSettings  admin writes
  LoadSnapshot / ComputeMetrics                             derived reads

DUPLICATE PAYMENT CONFIRMATION:
  The checkout return callback can arrive more than once (browser back
  button, retry, duplicate redirect). The recharge log's unique session id
  turns the second insert into ErrDuplicateSession, which this service maps
  to a no-op success returning the current balance.

SEE ALSO:
  - store.go: Persistence contract
  - pin: Hashing and format rules
  - payment: Checkout session bridge feeding RechargeBalance
*/
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/ticket-kiosk/pin"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service implements the kiosk operations over a transactional store.
type Service struct {
	store TxStore
	now   func() time.Time
}

func NewService(store TxStore) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service clock. For tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =============================================================================
// RECHARGE
// =============================================================================

// RechargeBalance credits the balance. Payment-sourced recharges must carry
// the checkout session id; a session already credited is a no-op success
// returning the current balance.
func (s *Service) RechargeBalance(ctx context.Context, amount decimal.Decimal, source RechargeSource, sessionID string) (RechargeResult, error) {
	if !amount.IsPositive() {
		return RechargeResult{}, ErrInvalidAmount
	}
	if source == SourcePayment && sessionID == "" {
		return RechargeResult{}, ErrSessionRequired
	}

	var res RechargeResult
	err := s.store.WithTx(ctx, func(st Store) error {
		rec := Recharge{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Amount:    amount,
			Source:    source,
			CreatedAt: s.now().UTC(),
		}
		if err := st.RecordRecharge(ctx, rec); err != nil {
			return err
		}
		newBalance, err := st.CreditBalance(ctx, amount)
		if err != nil {
			return err
		}
		res.NewBalance = newBalance
		return nil
	})

	if errors.Is(err, ErrDuplicateSession) {
		balance, berr := s.store.Balance(ctx)
		if berr != nil {
			return RechargeResult{}, berr
		}
		return RechargeResult{NewBalance: balance, Duplicate: true}, nil
	}
	if err != nil {
		return RechargeResult{}, err
	}
	return res, nil
}

// =============================================================================
// PURCHASE
// =============================================================================

// PurchaseTickets resolves the order, checks the balance, then debits and
// issues tickets in a single store transaction. On any failure the balance
// is unchanged and zero tickets exist.
func (s *Service) PurchaseTickets(ctx context.Context, order []OrderLine) (PurchaseResult, error) {
	if len(order) == 0 {
		return PurchaseResult{}, ErrInvalidQuantity
	}
	for _, line := range order {
		if line.Quantity < 1 {
			return PurchaseResult{}, ErrInvalidQuantity
		}
	}

	var res PurchaseResult
	err := s.store.WithTx(ctx, func(st Store) error {
		now := s.now().UTC()

		total := decimal.Zero
		var tickets []Ticket
		for _, line := range order {
			tt, err := st.TicketType(ctx, line.TypeID)
			if err != nil {
				return err
			}
			if tt == nil || !tt.Active {
				return &UnknownTicketTypeError{TypeID: line.TypeID}
			}
			total = total.Add(tt.Value.Mul(decimal.NewFromInt(int64(line.Quantity))))
			for i := 0; i < line.Quantity; i++ {
				tickets = append(tickets, Ticket{
					ID:          NewTicketID(),
					TypeID:      tt.ID,
					Consumed:    false,
					PurchasedAt: now,
				})
			}
		}

		balance, err := st.Balance(ctx)
		if err != nil {
			return err
		}
		if total.GreaterThan(balance) {
			return &InsufficientBalanceError{
				Available: balance,
				Requested: total,
				Shortfall: total.Sub(balance),
			}
		}

		newBalance, err := st.DebitBalance(ctx, total)
		if err != nil {
			return err
		}
		if err := st.InsertTickets(ctx, tickets); err != nil {
			return err
		}

		res = PurchaseResult{
			TicketsIssued: len(tickets),
			TotalCost:     total,
			NewBalance:    newBalance,
		}
		return nil
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	return res, nil
}

// =============================================================================
// CONSUMPTION
// =============================================================================

// ConsumeTicketGroup verifies the PIN, then consumes every currently
// unconsumed ticket of the given type in one transaction. Not capped.
func (s *Service) ConsumeTicketGroup(ctx context.Context, typeID TicketTypeID, attempt string) (ConsumeResult, error) {
	if err := s.gate(ctx, attempt); err != nil {
		return ConsumeResult{}, err
	}
	return s.consume(ctx, typeID)
}

// ConsumeAllAvailable verifies the PIN, then consumes every unconsumed
// ticket of any type.
func (s *Service) ConsumeAllAvailable(ctx context.Context, attempt string) (ConsumeResult, error) {
	if err := s.gate(ctx, attempt); err != nil {
		return ConsumeResult{}, err
	}
	return s.consume(ctx, "")
}

func (s *Service) consume(ctx context.Context, typeID TicketTypeID) (ConsumeResult, error) {
	var res ConsumeResult
	err := s.store.WithTx(ctx, func(st Store) error {
		tickets, err := st.UnconsumedTickets(ctx, typeID)
		if err != nil {
			return err
		}
		if len(tickets) == 0 {
			return ErrNoTicketsAvailable
		}

		ids := make([]TicketID, len(tickets))
		for i, t := range tickets {
			ids[i] = t.ID
		}
		n, err := st.ConsumeTickets(ctx, ids, s.now().UTC())
		if err != nil {
			return err
		}
		res.Consumed = n
		return nil
	})
	if err != nil {
		return ConsumeResult{}, err
	}
	return res, nil
}

// gate verifies the consumption PIN against the stored hash.
func (s *Service) gate(ctx context.Context, attempt string) error {
	hash, err := s.store.PinHash(ctx)
	if err != nil {
		return err
	}
	if hash == "" {
		return ErrPinNotConfigured
	}
	if !pin.Verify(hash, attempt) {
		return ErrPinMismatch
	}
	return nil
}

// VerifyPin reports whether the attempt matches the stored PIN.
func (s *Service) VerifyPin(ctx context.Context, attempt string) (bool, error) {
	err := s.gate(ctx, attempt)
	if errors.Is(err, ErrPinMismatch) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// ADMIN WRITES
// =============================================================================

// SaveTicketType validates and overwrites a catalog entry. A missing ID
// creates a new entry.
func (s *Service) SaveTicketType(ctx context.Context, t TicketType) (TicketType, error) {
	if t.Name == "" {
		return TicketType{}, ErrUnknownTicketType
	}
	if !t.Value.IsPositive() {
		return TicketType{}, ErrInvalidAmount
	}

	now := s.now().UTC()
	if t.ID == "" {
		t.ID = NewTicketTypeID()
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if err := s.store.SaveTicketType(ctx, t); err != nil {
		return TicketType{}, err
	}
	return t, nil
}

// UpdateGlobalPin hashes and stores a new 4-digit PIN, overwriting any
// previous one. No rotation history is kept.
func (s *Service) UpdateGlobalPin(ctx context.Context, newPin string) error {
	if !pin.Valid(newPin) {
		return ErrInvalidPin
	}
	hash, err := pin.Hash(newPin)
	if err != nil {
		return err
	}
	return s.store.SavePinHash(ctx, hash)
}

// UpdatePaymentSettings overwrites the provider settings.
func (s *Service) UpdatePaymentSettings(ctx context.Context, settings PaymentSettings) error {
	return s.store.SavePaymentSettings(ctx, settings)
}

// PaymentSettings returns the stored provider settings.
func (s *Service) PaymentSettings(ctx context.Context) (PaymentSettings, error) {
	return s.store.PaymentSettings(ctx)
}

// =============================================================================
// READS
// =============================================================================

// LoadSnapshot re-derives the full client-visible state from the store.
func (s *Service) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	balance, err := s.store.Balance(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	types, err := s.store.TicketTypes(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tickets, err := s.store.Tickets(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	hash, err := s.store.PinHash(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	settings, err := s.store.PaymentSettings(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Balance:       balance,
		TicketTypes:   types,
		Tickets:       tickets,
		PinConfigured: hash != "",
		Payment:       settings,
	}, nil
}
