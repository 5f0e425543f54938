/*
Package payment bridges the ledger service to an external checkout provider.

PURPOSE:
  Translates a recharge request into a checkout session and, on return,
  into a confirmed recharge. The provider is behind an interface; the
  bridge never trusts the client on how much was paid.

TRUST BOUNDARY:
  The return URL carries only a session id. CompleteRecharge looks up the
  authoritative paid amount from the provider by session id; any amount a
  client supplies alongside the callback is ignored. Combined with the
  ledger's session-keyed dedup, a replayed or forged callback can neither
  double-credit nor choose its own amount.

CANCELLATION:
  A cancelled checkout carries no session id and mutates nothing; callers
  simply drop it.

SEE ALSO:
  - ledger/service.go: RechargeBalance and its at-most-once guarantee
*/
package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/ticket-kiosk/ledger"
)

// =============================================================================
// PROVIDER CONTRACT
// =============================================================================

var (
	// ErrNotConfigured is returned when payment settings lack a price id.
	ErrNotConfigured = errors.New("payment provider not configured")

	// ErrUnknownSession is returned when a session id cannot be resolved to
	// a completed payment.
	ErrUnknownSession = errors.New("unknown checkout session")
)

// Session is a created checkout session the client should be redirected to.
type Session struct {
	ID          string
	RedirectURL string
}

// Provider creates checkout sessions and answers, server-side, how much a
// completed session actually paid.
type Provider interface {
	CreateSession(ctx context.Context, amount decimal.Decimal, priceID string) (Session, error)

	// LookupSession returns the amount paid for a completed session.
	// Fails with ErrUnknownSession if the session is missing or unpaid.
	LookupSession(ctx context.Context, sessionID string) (decimal.Decimal, error)
}

// =============================================================================
// BRIDGE
// =============================================================================

// Bridge connects a Provider to the ledger service.
type Bridge struct {
	provider Provider
	service  *ledger.Service
}

func NewBridge(provider Provider, service *ledger.Service) *Bridge {
	return &Bridge{provider: provider, service: service}
}

// InitiateRecharge opens a checkout session for the given amount.
func (b *Bridge) InitiateRecharge(ctx context.Context, amount decimal.Decimal) (Session, error) {
	if !amount.IsPositive() {
		return Session{}, ledger.ErrInvalidAmount
	}
	settings, err := b.service.PaymentSettings(ctx)
	if err != nil {
		return Session{}, err
	}
	if settings.PriceID == "" {
		return Session{}, ErrNotConfigured
	}
	return b.provider.CreateSession(ctx, amount, settings.PriceID)
}

// CompleteRecharge credits the balance with the provider-verified amount
// for the session. Replayed callbacks are no-op successes.
func (b *Bridge) CompleteRecharge(ctx context.Context, sessionID string) (ledger.RechargeResult, error) {
	amount, err := b.provider.LookupSession(ctx, sessionID)
	if err != nil {
		return ledger.RechargeResult{}, err
	}
	return b.service.RechargeBalance(ctx, amount, ledger.SourcePayment, sessionID)
}

// =============================================================================
// SIMULATED PROVIDER - dev and tests
// =============================================================================

// Simulated is an in-process provider: sessions complete immediately for
// the requested amount. Real payment processing is out of scope.
type Simulated struct {
	mu       sync.Mutex
	sessions map[string]decimal.Decimal
}

func NewSimulated() *Simulated {
	return &Simulated{sessions: make(map[string]decimal.Decimal)}
}

func (p *Simulated) CreateSession(_ context.Context, amount decimal.Decimal, _ string) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := "sim_" + uuid.NewString()
	p.sessions[id] = amount
	return Session{ID: id, RedirectURL: "/recharge/return?session_id=" + id}, nil
}

func (p *Simulated) LookupSession(_ context.Context, sessionID string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	amount, ok := p.sessions[sessionID]
	if !ok {
		return decimal.Zero, ErrUnknownSession
	}
	return amount, nil
}
