package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type sqliteProductRepository struct {
	store *SQLiteStore
}

func NewSQLiteProductRepository(store *SQLiteStore) repository.ProductRepository {
	return &sqliteProductRepository{store: store}
}

const productColumns = `id, name, description, category, price, stock, image, rating, reviews, status, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var product entity.Product
	var deletedAt sql.NullTime
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.Image,
		&product.Rating,
		&product.Reviews,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		product.DeletedAt = &deletedAt.Time
	}
	return &product, nil
}

func (r *sqliteProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := r.store.conn.ExecContext(ctx, `
	INSERT INTO products (`+productColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.Stock,
		product.Image,
		product.Rating,
		product.Reviews,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
		nullTime(product.DeletedAt),
	)
	if err != nil {
		return errors.Internal("Failed to create product", err)
	}

	return nil
}

func (r *sqliteProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.store.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ? AND deleted_at IS NULL`, id)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Product", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get product", err)
	}

	return product, nil
}

func (r *sqliteProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE deleted_at IS NULL`
	var args []interface{}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.store.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal("Failed to list products", err)
	}
	defer rows.Close()

	products := []*entity.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse product data", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate products", err)
	}

	return products, nil
}

func (r *sqliteProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now().UTC()

	res, err := r.store.conn.ExecContext(ctx, `
	UPDATE products SET
		name = ?, description = ?, category = ?, price = ?, stock = ?,
		image = ?, rating = ?, reviews = ?, status = ?, updated_at = ?
	WHERE id = ? AND deleted_at IS NULL
	`,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.Stock,
		product.Image,
		product.Rating,
		product.Reviews,
		product.Status,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return errors.Internal("Failed to update product", err)
	}
	return expectOneRow(res, "Product")
}

func (r *sqliteProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	res, err := r.store.conn.ExecContext(ctx,
		`UPDATE products SET stock = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		stock, time.Now().UTC(), id)
	if err != nil {
		return errors.Internal("Failed to update product stock", err)
	}
	return expectOneRow(res, "Product")
}

func (r *sqliteProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.store.conn.ExecContext(ctx,
		`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL AND stock >= ?`,
		qty, time.Now().UTC(), id, qty)
	if err != nil {
		return errors.Internal("Failed to decrement product stock", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Internal("Failed to decrement product stock", err)
	}
	if n == 0 {
		product, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return errors.Conflict("Insufficient stock for " + product.Name)
	}

	return nil
}

func (r *sqliteProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.store.conn.ExecContext(ctx,
		`UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?`,
		qty, time.Now().UTC(), id)
	if err != nil {
		return errors.Internal("Failed to increment product stock", err)
	}
	return expectOneRow(res, "Product")
}

func (r *sqliteProductRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := r.store.conn.ExecContext(ctx,
		`UPDATE products SET deleted_at = ?, status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, entity.ProductStatusDeleted, now, id)
	if err != nil {
		return errors.Internal("Failed to soft delete product", err)
	}
	return expectOneRow(res, "Product")
}

func (r *sqliteProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, errors.Internal("Failed to count products", err)
	}
	return n, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func expectOneRow(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Internal("Failed to read affected rows", err)
	}
	if n == 0 {
		return errors.NotFound(resource, nil)
	}
	return nil
}
