// Package catalog provides read-only lookups of products, add-on items and
// charges for price resolution.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type Reader interface {
	ProductByID(ctx context.Context, id int64) (*Product, error)
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]Product, error)
	ListProducts(ctx context.Context, q Query) ([]Product, error)
	AddOnItemsByIDs(ctx context.Context, ids []int64) ([]AddOnItem, error)
	ChargesByIDs(ctx context.Context, ids []int64) ([]Charge, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ProductByID(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT product_id, category_id, product_name, product_price, available, created_at
		FROM product WHERE product_id=$1
	`, id).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.Available, &p.CreatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *PGRepo) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]Product, error) {
	out := make(map[int64]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT product_id, category_id, product_name, product_price, available, created_at
		FROM product WHERE product_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.Available, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *PGRepo) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT product_id, category_id, product_name, product_price, available, created_at
		FROM product
		WHERE ($1 = '' OR product_name ILIKE '%'||$1||'%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Price, &p.Available, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddOnItemsByIDs(ctx context.Context, ids []int64) ([]AddOnItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT item_id, item_name, item_price, is_applicable
		FROM addonitem WHERE item_id = ANY($1)
		ORDER BY item_id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AddOnItem
	for rows.Next() {
		var a AddOnItem
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.IsApplicable); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) ChargesByIDs(ctx context.Context, ids []int64) ([]Charge, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT charges_id, charges_name, charges_price, is_applicable
		FROM charges WHERE charges_id = ANY($1)
		ORDER BY charges_id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Charge
	for rows.Next() {
		var c Charge
		if err := rows.Scan(&c.ID, &c.Name, &c.Price, &c.IsApplicable); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
