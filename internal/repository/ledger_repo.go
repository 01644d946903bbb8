package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evetabi/hotornot/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LedgerRepository persists principal balances and the append-only entry
// log behind them. Grounded on the teacher's wallet_repo.go: row-level
// locking via FOR UPDATE before a balance mutation, a NamedExecContext
// insert for the audit trail alongside every mutation.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetBalance fetches a principal's current balance, creating a zero balance
// row on first sight — unlike the teacher's wallets (provisioned at
// registration), a Principal can bet without any prior account-creation step.
func (r *LedgerRepository) GetBalance(ctx context.Context, principal string) (*domain.Balance, error) {
	var b domain.Balance
	err := r.db.GetContext(ctx, &b, `SELECT * FROM balances WHERE principal = $1`, principal)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger_repo.GetBalance: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO balances (principal, amount, updated_at) VALUES ($1, 0, now())
		 ON CONFLICT (principal) DO NOTHING`, principal)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.GetBalance provision: %w", err)
	}
	err = r.db.GetContext(ctx, &b, `SELECT * FROM balances WHERE principal = $1`, principal)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.GetBalance reread: %w", err)
	}
	return &b, nil
}

// ApplyEntry credits or debits amount (signed: negative for a deduction)
// against a principal's balance inside tx, locking the row first, and
// writes the corresponding audit entry. amount is a decimal so the ledger
// can carry fractional display precision the uint64 engine never needs.
func (r *LedgerRepository) ApplyEntry(ctx context.Context, tx *sqlx.Tx, entry *domain.LedgerEntry) error {
	var current decimal.Decimal
	err := tx.GetContext(ctx, &current,
		`SELECT amount FROM balances WHERE principal = $1 FOR UPDATE`, entry.Principal)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (principal, amount, updated_at) VALUES ($1, 0, now())`,
			entry.Principal); err != nil {
			return fmt.Errorf("ledger_repo.ApplyEntry provision: %w", err)
		}
		current = decimal.Zero
	} else if err != nil {
		return fmt.Errorf("ledger_repo.ApplyEntry lock: %w", err)
	}

	newBalance := current.Add(entry.Amount)
	if _, err := tx.ExecContext(ctx,
		`UPDATE balances SET amount = $1, updated_at = now() WHERE principal = $2`,
		newBalance, entry.Principal); err != nil {
		return fmt.Errorf("ledger_repo.ApplyEntry update: %w", err)
	}
	entry.BalanceAfter = newBalance

	query := `
		INSERT INTO ledger_entries
			(principal, type, amount, post_id, slot_id, room_id, balance_after, created_at)
		VALUES
			(:principal, :type, :amount, :post_id, :slot_id, :room_id, :balance_after, now())`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("ledger_repo.ApplyEntry insert: %w", err)
	}
	return nil
}

// GetEntries returns paginated ledger history for a principal, most recent first.
func (r *LedgerRepository) GetEntries(ctx context.Context, principal string, limit, offset int) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM ledger_entries
		WHERE principal = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		principal, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.GetEntries: %w", err)
	}
	return entries, nil
}

// CommissionReport aggregates commission-paid entries between from and to
// (inclusive), for the back office's finance view. Each post's owner is
// credited commission the same way a winning bettor is credited a payout,
// so the total here reconciles with the sum of their balance's commission
// entries.
type CommissionReport struct {
	Principal       string          `db:"principal"`
	TotalCommission decimal.Decimal `db:"total_commission"`
	EntryCount      int             `db:"entry_count"`
}

// CommissionReport returns per-principal commission totals across the given
// window, descending by total.
func (r *LedgerRepository) CommissionReport(ctx context.Context, from, to time.Time, limit int) ([]*CommissionReport, error) {
	var rows []*CommissionReport
	err := r.db.SelectContext(ctx, &rows, `
		SELECT principal,
		       COALESCE(SUM(amount), 0) AS total_commission,
		       COUNT(*)                 AS entry_count
		FROM ledger_entries
		WHERE type = $1 AND created_at BETWEEN $2 AND $3
		GROUP BY principal
		ORDER BY total_commission DESC
		LIMIT $4`,
		domain.LedgerEntryCommissionPaid, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.CommissionReport: %w", err)
	}
	return rows, nil
}

// BeginTx starts a transaction for the caller to pass to ApplyEntry one or
// more times atomically (e.g. a commission entry plus every winner's payout
// entry from a single tabulated room).
func (r *LedgerRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
