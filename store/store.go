package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Row structs are plain representations of DB rows.
type StoreRow struct {
	ID      int64
	Name    string
	OwnerID int64

	// TotalProducts is filled by reads that aggregate over products.
	TotalProducts int
}

type ProductRow struct {
	ID          int64
	StoreID     int64
	Name        string
	Price       decimal.Decimal
	Stock       int
	Description string

	// AverageRating and ReviewCount are filled by reads that aggregate
	// over reviews.
	AverageRating float64
	ReviewCount   int
}

type ReviewRow struct {
	ID        int64
	ProductID int64
	UserID    int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type OrderRow struct {
	ID        int64
	UserID    int64
	Total     decimal.Decimal
	OrderedAt time.Time
	Items     []OrderItemRow
}

// OrderItemRow snapshots one cart line at placement time. Price is the line
// total (unit price * quantity), not the unit price.
type OrderItemRow struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// OrderDraft is a priced order ready to persist. Items keep the cart order.
type OrderDraft struct {
	UserID int64
	Total  decimal.Decimal
	Items  []OrderItemRow
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// statements can run standalone or inside a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is a Store backed by Postgres. All cross-row consistency is
// enforced by the database itself (conditional updates, constraints,
// transactions); there are no process-local locks to coordinate around.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// CreateStore inserts a store and returns the full row.
func (s *PostgresStore) CreateStore(ctx context.Context, name string, ownerID int64) (StoreRow, error) {
	row := StoreRow{Name: name, OwnerID: ownerID}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO stores (name, owner_id) VALUES ($1, $2) RETURNING id`,
		name, ownerID,
	).Scan(&row.ID)
	if err != nil {
		return StoreRow{}, persistErr("create store", err)
	}
	return row, nil
}

// GetStore returns one store with its product count.
func (s *PostgresStore) GetStore(ctx context.Context, id int64) (StoreRow, error) {
	var row StoreRow
	err := s.DB.QueryRowContext(ctx,
		`SELECT s.id, s.name, s.owner_id, COUNT(p.id)
		FROM stores s
		LEFT JOIN products p ON p.store_id = s.id
		WHERE s.id = $1
		GROUP BY s.id`,
		id,
	).Scan(&row.ID, &row.Name, &row.OwnerID, &row.TotalProducts)
	if errors.Is(err, sql.ErrNoRows) {
		return StoreRow{}, ErrStoreNotFound
	}
	if err != nil {
		return StoreRow{}, persistErr("get store", err)
	}
	return row, nil
}

// ListStores returns all stores with their product counts.
func (s *PostgresStore) ListStores(ctx context.Context) ([]StoreRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT s.id, s.name, s.owner_id, COUNT(p.id)
		FROM stores s
		LEFT JOIN products p ON p.store_id = s.id
		GROUP BY s.id
		ORDER BY s.id`)
	if err != nil {
		return nil, persistErr("list stores", err)
	}
	defer rows.Close()

	out := []StoreRow{}
	for rows.Next() {
		var row StoreRow
		if err := rows.Scan(&row.ID, &row.Name, &row.OwnerID, &row.TotalProducts); err != nil {
			return nil, persistErr("list stores", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list stores", err)
	}
	return out, nil
}

// UpdateStore renames a store and returns the fresh row.
func (s *PostgresStore) UpdateStore(ctx context.Context, id int64, name string) (StoreRow, error) {
	res, err := s.DB.ExecContext(ctx, `UPDATE stores SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return StoreRow{}, persistErr("update store", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return StoreRow{}, persistErr("update store", err)
	}
	if n == 0 {
		return StoreRow{}, ErrStoreNotFound
	}
	return s.GetStore(ctx, id)
}

// DeleteStore removes a store and, via CASCADE, its products and their
// reviews. Fails with ErrProductOrdered when any product has order history.
func (s *PostgresStore) DeleteStore(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if isFKViolation(err) {
		return ErrProductOrdered
	}
	if err != nil {
		return persistErr("delete store", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("delete store", err)
	}
	if n == 0 {
		return ErrStoreNotFound
	}
	return nil
}
