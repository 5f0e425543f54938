/*
errors.go - Centralized error types for the ledger service

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers should match with errors.Is; structured errors carry the
  numbers needed for a useful client message.

ERROR CATEGORIES:
  1. Validation errors - bad amount, malformed PIN, unknown type
  2. Business outcomes - insufficient balance, nothing to consume
  3. PIN gate - mismatch, not configured
  4. Store errors - transient persistence failures

USAGE:
  if errors.Is(err, ledger.ErrInsufficientBalance) {
      var ib *ledger.InsufficientBalanceError
      if errors.As(err, &ib) { ... ib.Shortfall ... }
  }

SEE ALSO:
  - service.go: Returns these errors
  - store/sqlite: Maps driver failures onto ErrStoreUnavailable
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when a recharge or ticket-type value is
	// not strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidQuantity is returned when an order line quantity is below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrInvalidPin is returned when a new PIN is not exactly 4 digits.
	ErrInvalidPin = errors.New("pin must be exactly 4 digits")

	// ErrUnknownTicketType is returned when an order references a missing or
	// inactive ticket type.
	ErrUnknownTicketType = errors.New("unknown or inactive ticket type")

	// ErrInsufficientBalance is returned when a purchase would drive the
	// balance negative. The purchase is rejected with no side effect.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNoTicketsAvailable is returned when a consume operation finds no
	// unconsumed tickets matching its filter.
	ErrNoTicketsAvailable = errors.New("no tickets available")

	// ErrPinMismatch is returned when a consumption attempt carries the
	// wrong PIN. No ticket state changes.
	ErrPinMismatch = errors.New("pin mismatch")

	// ErrPinNotConfigured is returned when consumption is attempted before
	// an admin has set the global PIN.
	ErrPinNotConfigured = errors.New("pin not configured")

	// ErrSessionRequired is returned when a payment-sourced recharge carries
	// no checkout session id.
	ErrSessionRequired = errors.New("payment recharge requires a session id")

	// ErrDuplicateSession is returned by stores when a recharge session id
	// was already recorded. The service maps this to a no-op success.
	ErrDuplicateSession = errors.New("duplicate recharge session")

	// ErrStoreUnavailable wraps transient persistence failures. Safe to
	// retry the whole operation: mutations are transactional, so no partial
	// state survives a failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError details a balance shortage.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s, shortfall %s",
		e.Available, e.Requested, e.Shortfall)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// UnknownTicketTypeError names the offending order line.
type UnknownTicketTypeError struct {
	TypeID TicketTypeID
}

func (e *UnknownTicketTypeError) Error() string {
	return fmt.Sprintf("unknown or inactive ticket type: %s", e.TypeID)
}

func (e *UnknownTicketTypeError) Unwrap() error {
	return ErrUnknownTicketType
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsClientError returns true if the error is due to invalid client input or
// an expected business outcome; retrying the same request cannot succeed.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPin) ||
		errors.Is(err, ErrUnknownTicketType) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrNoTicketsAvailable) ||
		errors.Is(err, ErrSessionRequired)
}

// IsAuthError returns true if the error is a failure of the PIN gate.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrPinMismatch) ||
		errors.Is(err, ErrPinNotConfigured)
}
