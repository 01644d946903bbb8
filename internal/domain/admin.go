package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// AdminRole
// ──────────────────────────────────────────────────────────────────────────────

// AdminRole controls access levels in the back office. There is no
// equivalent "user" role here: bettors are identified purely by Principal
// and never authenticate against this table — only staff running the
// back office have an account.
type AdminRole string

const (
	RoleAdmin    AdminRole = "admin"    // full back-office access
	RoleFinance  AdminRole = "finance"  // commission/ledger reports
	RoleOps      AdminRole = "ops"      // manual tabulation triggers
	RoleReadOnly AdminRole = "readonly" // read-only back-office access
)

// CanAccessBackoffice returns true for every defined role — the enum exists
// purely so roles can be differentiated within the back office.
func (r AdminRole) CanAccessBackoffice() bool {
	switch r {
	case RoleAdmin, RoleFinance, RoleOps, RoleReadOnly:
		return true
	default:
		return false
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AdminAccount
// ──────────────────────────────────────────────────────────────────────────────

// AdminAccount is a back-office staff login. It has no relationship to the
// bettor Principal namespace.
type AdminAccount struct {
	ID           uuid.UUID `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Username     string    `json:"username"   db:"username"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	Role         AdminRole `json:"role"       db:"role"`
	IsActive     bool      `json:"is_active"  db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicProfile returns an account view safe to expose via API (no password hash).
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      AdminRole `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublicProfile converts an AdminAccount to its public-safe representation.
func (a *AdminAccount) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:        a.ID,
		Email:     a.Email,
		Username:  a.Username,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}
