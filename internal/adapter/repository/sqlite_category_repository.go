package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type sqliteCategoryRepository struct {
	store *SQLiteStore
}

func NewSQLiteCategoryRepository(store *SQLiteStore) repository.CategoryRepository {
	return &sqliteCategoryRepository{store: store}
}

const categoryColumns = `id, name, slug, description, status, created_at, updated_at`

func scanCategory(row rowScanner) (*entity.Category, error) {
	var category entity.Category
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.Status,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *sqliteCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	_, err := r.store.conn.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.Status,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return errors.Conflict("Category with this name already exists")
		}
		return errors.Internal("Failed to create category", err)
	}

	return nil
}

func (r *sqliteCategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
}

func (r *sqliteCategoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return r.getOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
}

func (r *sqliteCategoryRepository) getOne(ctx context.Context, query string, arg string) (*entity.Category, error) {
	category, err := scanCategory(r.store.conn.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Category", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get category", err)
	}
	return category, nil
}

func (r *sqliteCategoryRepository) List(ctx context.Context, status string) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.store.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal("Failed to list categories", err)
	}
	defer rows.Close()

	categories := []*entity.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse category data", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate categories", err)
	}

	return categories, nil
}

func (r *sqliteCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	category.UpdatedAt = time.Now().UTC()

	res, err := r.store.conn.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		category.Name,
		category.Slug,
		category.Description,
		category.Status,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return errors.Conflict("Category with this name already exists")
		}
		return errors.Internal("Failed to update category", err)
	}
	return expectOneRow(res, "Category")
}
