package repository

import (
	"context"
	"database/sql"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type sqliteUserRepository struct {
	store *SQLiteStore
}

func NewSQLiteUserRepository(store *SQLiteStore) repository.UserRepository {
	return &sqliteUserRepository{store: store}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.store.conn.ExecContext(ctx, `
	INSERT INTO users (id, email, name, role, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		email = excluded.email,
		name = excluded.name,
		role = excluded.role,
		updated_at = excluded.updated_at
	`, user.ID, user.Email, user.Name, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT id, email, name, role, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *sqliteUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT id, email, name, role, created_at, updated_at FROM users WHERE email = ? LIMIT 1`, email)
}

func (r *sqliteUserRepository) getOne(ctx context.Context, query, arg string) (*entity.User, error) {
	var user entity.User
	err := r.store.conn.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get user", err)
	}
	return &user, nil
}
