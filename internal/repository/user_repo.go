package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/stocklens/catalog-api/internal/models"
)

// UserRepository handles data access for login accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail returns the user with the given email, or sql.ErrNoRows.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT id, email, password_hash, name, role, is_active, created_at FROM users WHERE email = $1 LIMIT 1`
	var u models.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user with the given storage id, or sql.ErrNoRows.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	const q = `SELECT id, email, password_hash, name, role, is_active, created_at FROM users WHERE id = $1 LIMIT 1`
	var u models.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListPending returns inactive accounts awaiting admin approval, oldest first.
func (r *UserRepository) ListPending(ctx context.Context) ([]models.User, error) {
	const q = `SELECT id, email, password_hash, name, role, is_active, created_at FROM users WHERE NOT is_active ORDER BY created_at ASC`
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, q); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	const q = `
        INSERT INTO users (id, email, password_hash, name, role, is_active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	return r.db.QueryRowxContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive).Scan(&u.CreatedAt)
}

// SetActive toggles the approval flag and returns the number of rows hit.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes an account and returns the number of rows hit.
func (r *UserRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
