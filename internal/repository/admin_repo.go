package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/evetabi/hotornot/internal/domain"
)

// AdminRepository handles all database operations for back-office staff
// accounts. Bettors never appear in this table — they are identified
// purely by Principal and have no login of their own.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts a new admin account row.
func (r *AdminRepository) Create(ctx context.Context, a *domain.AdminAccount) error {
	query := `
		INSERT INTO admin_accounts (id, email, username, password_hash, role, is_active, created_at, updated_at)
		VALUES (:id, :email, :username, :password_hash, :role, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		if isPgUniqueViolation(err, "admin_accounts_email_key") {
			return domain.ErrEmailTaken
		}
		if isPgUniqueViolation(err, "admin_accounts_username_key") {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("admin_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches an admin account by primary key.
func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	var a domain.AdminAccount
	err := r.db.GetContext(ctx, &a, `SELECT * FROM admin_accounts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("admin_repo.GetByID: %w", err)
	}
	return &a, nil
}

// GetByEmail fetches an admin account by email address (used for login).
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	var a domain.AdminAccount
	err := r.db.GetContext(ctx, &a, `SELECT * FROM admin_accounts WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("admin_repo.GetByEmail: %w", err)
	}
	return &a, nil
}

// List returns a paginated list of all admin accounts.
func (r *AdminRepository) List(ctx context.Context, limit, offset int) ([]*domain.AdminAccount, int, error) {
	var accounts []*domain.AdminAccount
	var total int

	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM admin_accounts`); err != nil {
		return nil, 0, fmt.Errorf("admin_repo.List count: %w", err)
	}
	if err := r.db.SelectContext(ctx, &accounts,
		`SELECT * FROM admin_accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("admin_repo.List select: %w", err)
	}
	return accounts, total, nil
}

// UpdateRole changes an admin account's role.
func (r *AdminRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.AdminRole) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admin_accounts SET role = $1, updated_at = now() WHERE id = $2`,
		string(role), id)
	if err != nil {
		return fmt.Errorf("admin_repo.UpdateRole: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// SetActive activates or deactivates an admin account.
func (r *AdminRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admin_accounts SET is_active = $1, updated_at = now() WHERE id = $2`,
		active, id)
	if err != nil {
		return fmt.Errorf("admin_repo.SetActive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
