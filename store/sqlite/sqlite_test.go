package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/ticket-kiosk/ledger"
	"github.com/warp/ticket-kiosk/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedStoreType(t *testing.T, store *sqlite.Store, id, name string, value int64) ledger.TicketType {
	now := time.Now().UTC()
	tt := ledger.TicketType{
		ID:        ledger.TicketTypeID(id),
		Name:      name,
		Value:     decimal.NewFromInt(value),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.SaveTicketType(context.Background(), tt))
	return tt
}

func insertTicket(t *testing.T, store *sqlite.Store, id string, typeID ledger.TicketTypeID, at time.Time) {
	require.NoError(t, store.InsertTickets(context.Background(), []ledger.Ticket{{
		ID:          ledger.TicketID(id),
		TypeID:      typeID,
		PurchasedAt: at,
	}}))
}

// =============================================================================
// BALANCE TESTS
// =============================================================================

func TestBalance_StartsAtZero(t *testing.T) {
	store := newTestStore(t)

	balance, err := store.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestBalance_CreditAndDebit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	balance, err := store.CreditBalance(ctx, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(30)))

	balance, err = store.DebitBalance(ctx, decimal.NewFromInt(12))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(18)))
}

func TestBalance_DebitBelowZero_Rejected(t *testing.T) {
	// GIVEN: Balance 10
	// WHEN: Debiting 11
	// THEN: ErrInsufficientBalance and the stored balance is untouched

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreditBalance(ctx, decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = store.DebitBalance(ctx, decimal.NewFromInt(11))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(10)))
}

func TestBalance_DecimalPrecision(t *testing.T) {
	// Amounts are stored as decimal text; cents survive round trips exactly.
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreditBalance(ctx, decimal.RequireFromString("0.10"))
	require.NoError(t, err)
	_, err = store.CreditBalance(ctx, decimal.RequireFromString("0.20"))
	require.NoError(t, err)

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("0.30")))
}

// =============================================================================
// TICKET TYPE TESTS
// =============================================================================

func TestTicketTypes_OrderedByName(t *testing.T) {
	store := newTestStore(t)

	seedStoreType(t, store, "b", "Zebra Pass", 9)
	seedStoreType(t, store, "a", "Alpha Pass", 3)

	types, err := store.TicketTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "Alpha Pass", types[0].Name)
	assert.Equal(t, "Zebra Pass", types[1].Name)
}

func TestTicketType_MissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	tt, err := store.TicketType(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, tt)
}

func TestSaveTicketType_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tt := seedStoreType(t, store, "t1", "Single Ride", 5)

	tt.Name = "Single Ride v2"
	tt.Active = false
	require.NoError(t, store.SaveTicketType(ctx, tt))

	got, err := store.TicketType(ctx, tt.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Single Ride v2", got.Name)
	assert.False(t, got.Active)
}

// =============================================================================
// TICKET TESTS
// =============================================================================

func TestUnconsumedTickets_FilterByType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	single := seedStoreType(t, store, "single", "Single Ride", 5)
	day := seedStoreType(t, store, "day", "Day Pass", 12)

	now := time.Now().UTC()
	insertTicket(t, store, "tk1", single.ID, now)
	insertTicket(t, store, "tk2", single.ID, now)
	insertTicket(t, store, "tk3", day.ID, now)

	got, err := store.UnconsumedTickets(ctx, single.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := store.UnconsumedTickets(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTickets_JoinsTypeData(t *testing.T) {
	store := newTestStore(t)

	tt := seedStoreType(t, store, "single", "Single Ride", 5)
	insertTicket(t, store, "tk1", tt.ID, time.Now().UTC())

	tickets, err := store.Tickets(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].Type)
	assert.Equal(t, "Single Ride", tickets[0].Type.Name)
	assert.True(t, tickets[0].Type.Value.Equal(decimal.NewFromInt(5)))
}

func TestConsumeTickets_CountsOnlyTransitions(t *testing.T) {
	// GIVEN: 2 unconsumed tickets, one already consumed
	// WHEN: Consuming all three ids
	// THEN: The affected count is 2; re-running yields 0

	store := newTestStore(t)
	ctx := context.Background()

	tt := seedStoreType(t, store, "single", "Single Ride", 5)
	now := time.Now().UTC()
	insertTicket(t, store, "tk1", tt.ID, now)
	insertTicket(t, store, "tk2", tt.ID, now)
	insertTicket(t, store, "tk3", tt.ID, now)

	n, err := store.ConsumeTickets(ctx, []ledger.TicketID{"tk1"}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.ConsumeTickets(ctx, []ledger.TicketID{"tk1", "tk2", "tk3"}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "already-consumed rows must not count")

	n, err = store.ConsumeTickets(ctx, []ledger.TicketID{"tk1", "tk2", "tk3"}, now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// =============================================================================
// PIN / PAYMENT SETTINGS TESTS
// =============================================================================

func TestPinHash_EmptyUntilSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hash, err := store.PinHash(ctx)
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, store.SavePinHash(ctx, "$2a$10$fakehash"))

	hash, err = store.PinHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$fakehash", hash)
}

func TestPaymentSettings_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.PaymentSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings.PriceID)

	require.NoError(t, store.SavePaymentSettings(ctx, ledger.PaymentSettings{
		PublishableKey: "pk_test",
		PriceID:        "price_1",
	}))

	settings, err = store.PaymentSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pk_test", settings.PublishableKey)
	assert.Equal(t, "price_1", settings.PriceID)
}

// =============================================================================
// RECHARGE LOG TESTS
// =============================================================================

func TestRecordRecharge_DuplicateSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := ledger.Recharge{
		ID:        "r1",
		SessionID: "cs_abc",
		Amount:    decimal.NewFromInt(25),
		Source:    ledger.SourcePayment,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.RecordRecharge(ctx, rec))

	rec.ID = "r2"
	err := store.RecordRecharge(ctx, rec)
	assert.ErrorIs(t, err, ledger.ErrDuplicateSession)
}

func TestRecordRecharge_EmptySessionRepeats(t *testing.T) {
	// Simulated recharges have no session id; NULL never collides.
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"r1", "r2", "r3"} {
		err := store.RecordRecharge(ctx, ledger.Recharge{
			ID:        id,
			Amount:    decimal.NewFromInt(int64(i + 1)),
			Source:    ledger.SourceSimulated,
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	recharges, err := store.Recharges(ctx)
	require.NoError(t, err)
	assert.Len(t, recharges, 3)
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: Balance 20
	// WHEN: A transaction credits, inserts a ticket, then fails
	// THEN: Neither the credit nor the ticket survives

	store := newTestStore(t)
	ctx := context.Background()

	tt := seedStoreType(t, store, "single", "Single Ride", 5)
	_, err := store.CreditBalance(ctx, decimal.NewFromInt(20))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithTx(ctx, func(st ledger.Store) error {
		if _, err := st.CreditBalance(ctx, decimal.NewFromInt(100)); err != nil {
			return err
		}
		if err := st.InsertTickets(ctx, []ledger.Ticket{{
			ID:          "tk1",
			TypeID:      tt.ID,
			PurchasedAt: time.Now().UTC(),
		}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(20)), "credit must roll back")

	tickets, err := store.Tickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, tickets, "insert must roll back")
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tt := seedStoreType(t, store, "single", "Single Ride", 5)

	err := store.WithTx(ctx, func(st ledger.Store) error {
		if _, err := st.CreditBalance(ctx, decimal.NewFromInt(10)); err != nil {
			return err
		}
		return st.InsertTickets(ctx, []ledger.Ticket{{
			ID:          "tk1",
			TypeID:      tt.ID,
			PurchasedAt: time.Now().UTC(),
		}})
	})
	require.NoError(t, err)

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(10)))

	tickets, err := store.Tickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestWithTx_DuplicateSessionAbortsCredit(t *testing.T) {
	// The recharge pattern: a duplicate session id must abort the
	// transaction before the balance credit commits.

	store := newTestStore(t)
	ctx := context.Background()

	rec := ledger.Recharge{
		ID:        "r1",
		SessionID: "cs_abc",
		Amount:    decimal.NewFromInt(25),
		Source:    ledger.SourcePayment,
		CreatedAt: time.Now().UTC(),
	}
	err := store.WithTx(ctx, func(st ledger.Store) error {
		if err := st.RecordRecharge(ctx, rec); err != nil {
			return err
		}
		_, err := st.CreditBalance(ctx, rec.Amount)
		return err
	})
	require.NoError(t, err)

	rec.ID = "r2"
	err = store.WithTx(ctx, func(st ledger.Store) error {
		if err := st.RecordRecharge(ctx, rec); err != nil {
			return err
		}
		_, err := st.CreditBalance(ctx, rec.Amount)
		return err
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateSession)

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(25)), "replay must not credit twice")
}

// =============================================================================
// ERROR WRAPPING TESTS
// =============================================================================

func TestClosedStore_ReportsUnavailable(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Balance(context.Background())
	assert.ErrorIs(t, err, ledger.ErrStoreUnavailable)
}
