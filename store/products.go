package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows ListProducts. Zero values mean "no constraint";
// MinPrice and MaxPrice are pointers so a zero bound stays expressible.
type ProductFilter struct {
	Search   string
	StoreID  int64
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	First    int
	Offset   int
}

const productSelect = `SELECT p.id, p.store_id, p.name, p.price, p.stock, p.description,
	COALESCE(AVG(r.rating), 0), COUNT(r.id)
	FROM products p
	LEFT JOIN reviews r ON r.product_id = p.id`

func scanProduct(row interface{ Scan(dest ...any) error }, p *ProductRow) error {
	return row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Stock, &p.Description,
		&p.AverageRating, &p.ReviewCount)
}

// CreateProduct inserts a product and returns the full row.
func (s *PostgresStore) CreateProduct(ctx context.Context, p ProductRow) (ProductRow, error) {
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO products (store_id, name, price, stock, description)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.StoreID, p.Name, p.Price, p.Stock, p.Description,
	).Scan(&p.ID)
	if isFKViolation(err) {
		return ProductRow{}, ErrStoreNotFound
	}
	if err != nil {
		return ProductRow{}, persistErr("create product", err)
	}
	return p, nil
}

// GetProduct returns one product with its review aggregates.
func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (ProductRow, error) {
	var p ProductRow
	err := scanProduct(s.DB.QueryRowContext(ctx,
		productSelect+` WHERE p.id = $1 GROUP BY p.id`, id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return ProductRow{}, &ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return ProductRow{}, persistErr("get product", err)
	}
	return p, nil
}

// ListProducts returns products matching f, ordered by id. The WHERE clause
// is built from the filter; placeholders are numbered as arguments land.
func (s *PostgresStore) ListProducts(ctx context.Context, f ProductFilter) ([]ProductRow, error) {
	query := productSelect
	var (
		where []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	if f.StoreID != 0 {
		args = append(args, f.StoreID)
		where = append(where, fmt.Sprintf("p.store_id = $%d", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		where = append(where, fmt.Sprintf("p.price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		where = append(where, fmt.Sprintf("p.price <= $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY p.id ORDER BY p.id"
	if f.First > 0 {
		args = append(args, f.First)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list products", err)
	}
	defer rows.Close()

	out := []ProductRow{}
	for rows.Next() {
		var p ProductRow
		if err := scanProduct(rows, &p); err != nil {
			return nil, persistErr("list products", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list products", err)
	}
	return out, nil
}

// ProductsByIDs returns the products with the given ids, ordered by id.
// Missing ids are simply absent from the result; callers decide whether
// that is an error. No review aggregates here, pricing does not need them.
func (s *PostgresStore) ProductsByIDs(ctx context.Context, ids []int64) ([]ProductRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, store_id, name, price, stock, description
		FROM products WHERE id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return nil, persistErr("products by ids", err)
	}
	defer rows.Close()

	out := []ProductRow{}
	for rows.Next() {
		var p ProductRow
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Stock, &p.Description); err != nil {
			return nil, persistErr("products by ids", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("products by ids", err)
	}
	return out, nil
}

// ProductUpdate carries the fields to change; nil means keep.
type ProductUpdate struct {
	Name        *string
	Price       *decimal.Decimal
	Stock       *int
	Description *string
}

// UpdateProduct applies upd and returns the fresh row. An empty update is a
// plain read.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id int64, upd ProductUpdate) (ProductRow, error) {
	var (
		sets []string
		args []any
	)
	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Price != nil {
		args = append(args, *upd.Price)
		sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
	}
	if upd.Stock != nil {
		args = append(args, *upd.Stock)
		sets = append(sets, fmt.Sprintf("stock = $%d", len(args)))
	}
	if upd.Description != nil {
		args = append(args, *upd.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetProduct(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return ProductRow{}, persistErr("update product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ProductRow{}, persistErr("update product", err)
	}
	if n == 0 {
		return ProductRow{}, &ProductNotFoundError{ProductID: id}
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product and its reviews. Fails with
// ErrProductOrdered when order items reference it.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if isFKViolation(err) {
		return ErrProductOrdered
	}
	if err != nil {
		return persistErr("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("delete product", err)
	}
	if n == 0 {
		return &ProductNotFoundError{ProductID: id}
	}
	return nil
}
