/*
Package sqlite provides the SQLite-backed implementation of the ledger
storage interfaces.

PURPOSE:
  Implements ledger.Store and ledger.TxStore. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  balance           singleton row (id = 1)
  ticket_types      catalog entries
  tickets           one row per purchased unit; consumed rows are kept
  global_pin        singleton PIN hash
  payment_settings  singleton provider config
  recharges         append-only credit log, UNIQUE session id

ATOMICITY:
  WithTx wraps a function in BEGIN/COMMIT. Purchase (balance debit + N
  ticket inserts) and consume (N ticket updates) run through it, so a
  crash or conflicting request cannot leave balance decremented without
  tickets issued, or vice versa.

DEDUP:
  recharges.session_id carries a UNIQUE index. A replayed payment
  confirmation fails the insert, surfaces as ledger.ErrDuplicateSession,
  and the service turns it into a no-op success. Simulated recharges store
  NULL session ids, which the index permits repeatedly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL for better concurrency and crash recovery.

USAGE:
  store, err := sqlite.New("./data/kiosk.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc := ledger.NewService(store)

SEE ALSO:
  - ledger/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/ticket-kiosk/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Singleton balance. Amount stored as decimal text, never float.
	CREATE TABLE IF NOT EXISTS balance (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		amount TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	INSERT INTO balance (id, amount, updated_at)
		SELECT 1, '0', strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE NOT EXISTS (SELECT 1 FROM balance WHERE id = 1);

	CREATE TABLE IF NOT EXISTS ticket_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		color TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ticket_types_name
		ON ticket_types(name);

	-- One row per purchased unit. Rows transition unconsumed -> consumed
	-- and are never deleted.
	CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		type_id TEXT NOT NULL REFERENCES ticket_types(id),
		consumed BOOLEAN NOT NULL DEFAULT FALSE,
		purchased_at TEXT NOT NULL,
		consumed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_type
		ON tickets(type_id);

	-- Hot path: "unconsumed tickets of type X"
	CREATE INDEX IF NOT EXISTS idx_tickets_unconsumed
		ON tickets(type_id, purchased_at) WHERE consumed = FALSE;

	CREATE TABLE IF NOT EXISTS global_pin (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		pin_hash TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payment_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		publishable_key TEXT NOT NULL DEFAULT '',
		price_id TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);

	-- Append-only credit log. The unique session id is the recharge dedup
	-- key; NULL (simulated recharges) is allowed repeatedly.
	CREATE TABLE IF NOT EXISTS recharges (
		id TEXT PRIMARY KEY,
		session_id TEXT UNIQUE,
		amount TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recharges_created
		ON recharges(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx so every data-access
// method can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// BALANCE
// =============================================================================

func (s *Store) Balance(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance(ctx, s.db)
}

func (s *Store) balance(ctx context.Context, q querier) (decimal.Decimal, error) {
	var amount string
	err := q.QueryRowContext(ctx, "SELECT amount FROM balance WHERE id = 1").Scan(&amount)
	if err != nil {
		return decimal.Zero, storeError("read balance", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, storeError("parse balance", err)
	}
	return d, nil
}

func (s *Store) CreditBalance(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustBalance(ctx, s.db, amount)
}

func (s *Store) DebitBalance(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustBalance(ctx, s.db, amount.Neg())
}

func (s *Store) adjustBalance(ctx context.Context, q querier, delta decimal.Decimal) (decimal.Decimal, error) {
	current, err := s.balance(ctx, q)
	if err != nil {
		return decimal.Zero, err
	}

	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, ledger.ErrInsufficientBalance
	}

	_, err = q.ExecContext(ctx,
		"UPDATE balance SET amount = ?, updated_at = ? WHERE id = 1",
		next.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return decimal.Zero, storeError("write balance", err)
	}
	return next, nil
}

// =============================================================================
// TICKET TYPES
// =============================================================================

func (s *Store) TicketTypes(ctx context.Context) ([]ledger.TicketType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticketTypes(ctx, s.db)
}

func (s *Store) ticketTypes(ctx context.Context, q querier) ([]ledger.TicketType, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, value, active, color, created_at, updated_at
		FROM ticket_types
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, storeError("query ticket types", err)
	}
	defer rows.Close()

	var types []ledger.TicketType
	for rows.Next() {
		t, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) TicketType(ctx context.Context, id ledger.TicketTypeID) (*ledger.TicketType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticketType(ctx, s.db, id)
}

func (s *Store) ticketType(ctx context.Context, q querier, id ledger.TicketTypeID) (*ledger.TicketType, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, value, active, color, created_at, updated_at
		FROM ticket_types
		WHERE id = ?
	`, string(id))

	var (
		t                    ledger.TicketType
		value                string
		color                sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &t.Name, &value, &t.Active, &color, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("scan ticket type", err)
	}

	t.Value = mustDecimal(value)
	t.Color = color.String
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &t, nil
}

func (s *Store) SaveTicketType(ctx context.Context, t ledger.TicketType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTicketType(ctx, s.db, t)
}

func (s *Store) saveTicketType(ctx context.Context, q querier, t ledger.TicketType) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO ticket_types (id, name, value, active, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			value = excluded.value,
			active = excluded.active,
			color = excluded.color,
			updated_at = excluded.updated_at
	`,
		string(t.ID), t.Name, t.Value.String(), t.Active, nullString(t.Color),
		t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return storeError("save ticket type", err)
	}
	return nil
}

// =============================================================================
// TICKETS
// =============================================================================

const ticketColumns = `
	t.id, t.type_id, t.consumed, t.purchased_at, t.consumed_at,
	tt.name, tt.value, tt.active, tt.color
`

func (s *Store) Tickets(ctx context.Context) ([]ledger.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickets(ctx, s.db)
}

func (s *Store) tickets(ctx context.Context, q querier) ([]ledger.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN ticket_types tt ON tt.id = t.type_id
		ORDER BY t.purchased_at DESC, t.id
	`
	return s.queryTickets(ctx, q, query)
}

func (s *Store) UnconsumedTickets(ctx context.Context, typeID ledger.TicketTypeID) ([]ledger.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unconsumedTickets(ctx, s.db, typeID)
}

func (s *Store) unconsumedTickets(ctx context.Context, q querier, typeID ledger.TicketTypeID) ([]ledger.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN ticket_types tt ON tt.id = t.type_id
		WHERE t.consumed = FALSE
	`
	var args []any
	if typeID != "" {
		query += " AND t.type_id = ?"
		args = append(args, string(typeID))
	}
	query += " ORDER BY t.purchased_at ASC, t.id"

	return s.queryTickets(ctx, q, query, args...)
}

func (s *Store) queryTickets(ctx context.Context, q querier, query string, args ...any) ([]ledger.Ticket, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("query tickets", err)
	}
	defer rows.Close()

	var tickets []ledger.Ticket
	for rows.Next() {
		var (
			t           ledger.Ticket
			tt          ledger.TicketType
			purchasedAt string
			consumedAt  sql.NullString
			value       string
			color       sql.NullString
		)
		err := rows.Scan(
			&t.ID, &t.TypeID, &t.Consumed, &purchasedAt, &consumedAt,
			&tt.Name, &value, &tt.Active, &color,
		)
		if err != nil {
			return nil, storeError("scan ticket", err)
		}

		t.PurchasedAt, _ = time.Parse(time.RFC3339, purchasedAt)
		if consumedAt.Valid {
			at, _ := time.Parse(time.RFC3339, consumedAt.String)
			t.ConsumedAt = &at
		}
		tt.ID = t.TypeID
		tt.Value = mustDecimal(value)
		tt.Color = color.String
		t.Type = &tt

		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *Store) InsertTickets(ctx context.Context, tickets []ledger.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertTickets(ctx, s.db, tickets)
}

func (s *Store) insertTickets(ctx context.Context, q querier, tickets []ledger.Ticket) error {
	for _, t := range tickets {
		_, err := q.ExecContext(ctx, `
			INSERT INTO tickets (id, type_id, consumed, purchased_at)
			VALUES (?, ?, FALSE, ?)
		`, string(t.ID), string(t.TypeID), t.PurchasedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return storeError("insert ticket", err)
		}
	}
	return nil
}

func (s *Store) ConsumeTickets(ctx context.Context, ids []ledger.TicketID, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumeTickets(ctx, s.db, ids, at)
}

func (s *Store) consumeTickets(ctx context.Context, q querier, ids []ledger.TicketID, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	args := make([]any, 0, len(ids)+1)
	args = append(args, at.UTC().Format(time.RFC3339))
	for _, id := range ids {
		args = append(args, string(id))
	}

	// The consumed = FALSE guard makes re-consumption a no-op: rows already
	// consumed are excluded from the affected count.
	res, err := q.ExecContext(ctx, `
		UPDATE tickets
		SET consumed = TRUE, consumed_at = ?
		WHERE id IN (`+placeholders+`) AND consumed = FALSE
	`, args...)
	if err != nil {
		return 0, storeError("consume tickets", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("count consumed", err)
	}
	return int(n), nil
}

// =============================================================================
// GLOBAL PIN
// =============================================================================

func (s *Store) PinHash(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pinHash(ctx, s.db)
}

func (s *Store) pinHash(ctx context.Context, q querier) (string, error) {
	var hash string
	err := q.QueryRowContext(ctx, "SELECT pin_hash FROM global_pin WHERE id = 1").Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", storeError("read pin", err)
	}
	return hash, nil
}

func (s *Store) SavePinHash(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePinHash(ctx, s.db, hash)
}

func (s *Store) savePinHash(ctx context.Context, q querier, hash string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO global_pin (id, pin_hash, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pin_hash = excluded.pin_hash,
			updated_at = excluded.updated_at
	`, hash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return storeError("save pin", err)
	}
	return nil
}

// =============================================================================
// PAYMENT SETTINGS
// =============================================================================

func (s *Store) PaymentSettings(ctx context.Context) (ledger.PaymentSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentSettings(ctx, s.db)
}

func (s *Store) paymentSettings(ctx context.Context, q querier) (ledger.PaymentSettings, error) {
	var settings ledger.PaymentSettings
	err := q.QueryRowContext(ctx,
		"SELECT publishable_key, price_id FROM payment_settings WHERE id = 1",
	).Scan(&settings.PublishableKey, &settings.PriceID)
	if err == sql.ErrNoRows {
		return ledger.PaymentSettings{}, nil
	}
	if err != nil {
		return ledger.PaymentSettings{}, storeError("read payment settings", err)
	}
	return settings, nil
}

func (s *Store) SavePaymentSettings(ctx context.Context, settings ledger.PaymentSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePaymentSettings(ctx, s.db, settings)
}

func (s *Store) savePaymentSettings(ctx context.Context, q querier, settings ledger.PaymentSettings) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO payment_settings (id, publishable_key, price_id, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			publishable_key = excluded.publishable_key,
			price_id = excluded.price_id,
			updated_at = excluded.updated_at
	`, settings.PublishableKey, settings.PriceID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return storeError("save payment settings", err)
	}
	return nil
}

// =============================================================================
// RECHARGE LOG
// =============================================================================

func (s *Store) RecordRecharge(ctx context.Context, r ledger.Recharge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordRecharge(ctx, s.db, r)
}

func (s *Store) recordRecharge(ctx context.Context, q querier, r ledger.Recharge) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO recharges (id, session_id, amount, source, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		r.ID, nullString(r.SessionID), r.Amount.String(), string(r.Source),
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateSession
		}
		return storeError("record recharge", err)
	}
	return nil
}

func (s *Store) Recharges(ctx context.Context) ([]ledger.Recharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recharges(ctx, s.db)
}

func (s *Store) recharges(ctx context.Context, q querier) ([]ledger.Recharge, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, session_id, amount, source, created_at
		FROM recharges
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, storeError("query recharges", err)
	}
	defer rows.Close()

	var recharges []ledger.Recharge
	for rows.Next() {
		var (
			r         ledger.Recharge
			sessionID sql.NullString
			amount    string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &sessionID, &amount, &r.Source, &createdAt); err != nil {
			return nil, storeError("scan recharge", err)
		}
		r.SessionID = sessionID.String
		r.Amount = mustDecimal(amount)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recharges = append(recharges, r)
	}
	return recharges, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer sqlTx.Rollback()

	view := &txStore{tx: sqlTx, parent: s}
	if err := fn(view); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}

// txStore routes every call through the open transaction. The parent's
// mutex is already held by WithTx.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) Balance(ctx context.Context) (decimal.Decimal, error) {
	return ts.parent.balance(ctx, ts.tx)
}

func (ts *txStore) CreditBalance(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return ts.parent.adjustBalance(ctx, ts.tx, amount)
}

func (ts *txStore) DebitBalance(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return ts.parent.adjustBalance(ctx, ts.tx, amount.Neg())
}

func (ts *txStore) TicketTypes(ctx context.Context) ([]ledger.TicketType, error) {
	return ts.parent.ticketTypes(ctx, ts.tx)
}

func (ts *txStore) TicketType(ctx context.Context, id ledger.TicketTypeID) (*ledger.TicketType, error) {
	return ts.parent.ticketType(ctx, ts.tx, id)
}

func (ts *txStore) SaveTicketType(ctx context.Context, t ledger.TicketType) error {
	return ts.parent.saveTicketType(ctx, ts.tx, t)
}

func (ts *txStore) Tickets(ctx context.Context) ([]ledger.Ticket, error) {
	return ts.parent.tickets(ctx, ts.tx)
}

func (ts *txStore) UnconsumedTickets(ctx context.Context, typeID ledger.TicketTypeID) ([]ledger.Ticket, error) {
	return ts.parent.unconsumedTickets(ctx, ts.tx, typeID)
}

func (ts *txStore) InsertTickets(ctx context.Context, tickets []ledger.Ticket) error {
	return ts.parent.insertTickets(ctx, ts.tx, tickets)
}

func (ts *txStore) ConsumeTickets(ctx context.Context, ids []ledger.TicketID, at time.Time) (int, error) {
	return ts.parent.consumeTickets(ctx, ts.tx, ids, at)
}

func (ts *txStore) PinHash(ctx context.Context) (string, error) {
	return ts.parent.pinHash(ctx, ts.tx)
}

func (ts *txStore) SavePinHash(ctx context.Context, hash string) error {
	return ts.parent.savePinHash(ctx, ts.tx, hash)
}

func (ts *txStore) PaymentSettings(ctx context.Context) (ledger.PaymentSettings, error) {
	return ts.parent.paymentSettings(ctx, ts.tx)
}

func (ts *txStore) SavePaymentSettings(ctx context.Context, settings ledger.PaymentSettings) error {
	return ts.parent.savePaymentSettings(ctx, ts.tx, settings)
}

func (ts *txStore) RecordRecharge(ctx context.Context, r ledger.Recharge) error {
	return ts.parent.recordRecharge(ctx, ts.tx, r)
}

func (ts *txStore) Recharges(ctx context.Context) ([]ledger.Recharge, error) {
	return ts.parent.recharges(ctx, ts.tx)
}

// =============================================================================
// HELPERS
// =============================================================================

func scanTicketType(rows *sql.Rows) (ledger.TicketType, error) {
	var (
		t                    ledger.TicketType
		value                string
		color                sql.NullString
		createdAt, updatedAt string
	)
	err := rows.Scan(&t.ID, &t.Name, &value, &t.Active, &color, &createdAt, &updatedAt)
	if err != nil {
		return t, storeError("scan ticket type", err)
	}
	t.Value = mustDecimal(value)
	t.Color = color.String
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ledger.ErrStoreUnavailable, op, err)
}
