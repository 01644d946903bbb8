package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType distinguishes the reason a balance moved. Unlike the core
// engine's uint64 stake accounting, the ledger stores amounts as
// decimal.Decimal so displayed balances can carry fractional token units
// without the truncation the engine itself depends on.
type LedgerEntryType string

const (
	LedgerEntryBetPlaced      LedgerEntryType = "bet_placed"
	LedgerEntryPayoutEarned   LedgerEntryType = "payout_earned"
	LedgerEntryCommissionPaid LedgerEntryType = "commission_paid"
	LedgerEntryAdminAdjust    LedgerEntryType = "admin_adjust"
)

// LedgerEntry is one durable record of a balance change for a principal.
type LedgerEntry struct {
	ID          int64           `json:"id"            db:"id"`
	Principal   string          `json:"principal"     db:"principal"`
	Type        LedgerEntryType `json:"type"          db:"type"`
	Amount      decimal.Decimal `json:"amount"        db:"amount"`
	PostID      uint64          `json:"post_id"       db:"post_id"`
	SlotID      uint8           `json:"slot_id"       db:"slot_id"`
	RoomID      uint64          `json:"room_id"       db:"room_id"`
	BalanceAfter decimal.Decimal `json:"balance_after" db:"balance_after"`
	CreatedAt   time.Time       `json:"created_at"    db:"created_at"`
}

// Balance is a principal's current holdings, as displayed by the
// back office and any bettor-facing balance query.
type Balance struct {
	Principal string          `json:"principal"  db:"principal"`
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
