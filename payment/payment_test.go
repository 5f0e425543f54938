package payment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/ticket-kiosk/ledger"
	"github.com/warp/ticket-kiosk/payment"
	"github.com/warp/ticket-kiosk/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestBridge(t *testing.T) (*payment.Bridge, *payment.Simulated, *ledger.Service, *memory.Store) {
	store := memory.New()
	service := ledger.NewService(store)
	provider := payment.NewSimulated()
	bridge := payment.NewBridge(provider, service)

	require.NoError(t, service.UpdatePaymentSettings(context.Background(), ledger.PaymentSettings{
		PublishableKey: "pk_test",
		PriceID:        "price_1",
	}))
	return bridge, provider, service, store
}

// =============================================================================
// CHECKOUT FLOW TESTS
// =============================================================================

func TestInitiateRecharge_CreatesSession(t *testing.T) {
	bridge, _, _, _ := newTestBridge(t)

	session, err := bridge.InitiateRecharge(context.Background(), decimal.NewFromInt(25))
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Contains(t, session.RedirectURL, session.ID)
}

func TestInitiateRecharge_NotConfigured(t *testing.T) {
	store := memory.New()
	service := ledger.NewService(store)
	bridge := payment.NewBridge(payment.NewSimulated(), service)

	_, err := bridge.InitiateRecharge(context.Background(), decimal.NewFromInt(25))
	assert.ErrorIs(t, err, payment.ErrNotConfigured)
}

func TestInitiateRecharge_NonPositiveAmount(t *testing.T) {
	bridge, _, _, _ := newTestBridge(t)

	_, err := bridge.InitiateRecharge(context.Background(), decimal.Zero)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestCompleteRecharge_CreditsProviderAmount(t *testing.T) {
	// GIVEN: A checkout session for 25
	// WHEN: Completing it
	// THEN: The balance is credited with the provider-side amount

	bridge, _, _, store := newTestBridge(t)
	ctx := context.Background()

	session, err := bridge.InitiateRecharge(ctx, decimal.NewFromInt(25))
	require.NoError(t, err)

	res, err := bridge.CompleteRecharge(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.True(t, res.NewBalance.Equal(decimal.NewFromInt(25)))

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(25)))
}

func TestCompleteRecharge_ReplayedCallback_CreditsOnce(t *testing.T) {
	// GIVEN: A confirmed checkout session
	// WHEN: The return callback fires again for the same session
	// THEN: The second call succeeds as a duplicate and the balance is unchanged

	bridge, _, _, store := newTestBridge(t)
	ctx := context.Background()

	session, err := bridge.InitiateRecharge(ctx, decimal.NewFromInt(25))
	require.NoError(t, err)

	_, err = bridge.CompleteRecharge(ctx, session.ID)
	require.NoError(t, err)

	res, err := bridge.CompleteRecharge(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.True(t, res.NewBalance.Equal(decimal.NewFromInt(25)))

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(25)), "replay must not double-credit")
}

func TestCompleteRecharge_UnknownSession(t *testing.T) {
	bridge, _, _, _ := newTestBridge(t)

	_, err := bridge.CompleteRecharge(context.Background(), "cs_forged")
	assert.ErrorIs(t, err, payment.ErrUnknownSession)
}

func TestCompleteRecharge_AmountIsProviderAuthoritative(t *testing.T) {
	// The bridge only ever sees the session id; whatever amount a client
	// might claim is irrelevant because the credit comes from LookupSession.

	bridge, provider, _, store := newTestBridge(t)
	ctx := context.Background()

	session, err := bridge.InitiateRecharge(ctx, decimal.NewFromInt(5))
	require.NoError(t, err)

	amount, err := provider.LookupSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(5)))

	_, err = bridge.CompleteRecharge(ctx, session.ID)
	require.NoError(t, err)

	balance, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(5)))
}
