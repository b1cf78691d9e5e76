// Package cart owns cart line items and the order lifecycle: upserts keyed by
// (order, product), add-on/charge toggles, the Processing -> Placed state
// machine and cascading deletion. Reads assemble CartItem aggregates and
// re-emit through the watch hub on every underlying change.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Repository is the storage contract. Every method is atomic: multi-row
// writes run in a single transaction and either commit fully or not at all.
type Repository interface {
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	OrdersByTypeStatus(ctx context.Context, typ OrderType, status OrderStatus) ([]Order, error)

	// UpsertLine creates the owning Processing order if absent, then
	// inserts or updates the (orderID, productID) row.
	UpsertLine(ctx context.Context, orderID, productID int64, qty int) error
	DeleteLine(ctx context.Context, orderID, productID int64) error
	Quantity(ctx context.Context, orderID, productID int64) (int, bool, error)
	LineItems(ctx context.Context, orderID int64) ([]LineItem, error)

	HasAddOn(ctx context.Context, orderID, itemID int64) (bool, error)
	AddAddOn(ctx context.Context, orderID, itemID int64) error
	RemoveAddOn(ctx context.Context, orderID, itemID int64) error
	AddOnIDs(ctx context.Context, orderID int64) ([]int64, error)

	HasCharge(ctx context.Context, orderID, chargesID int64) (bool, error)
	AddCharge(ctx context.Context, orderID, chargesID int64) error
	RemoveCharge(ctx context.Context, orderID, chargesID int64) error
	ChargeIDs(ctx context.Context, orderID int64) ([]int64, error)

	// PlaceOrders transitions every listed Processing order to Placed in one
	// transaction and returns how many rows moved. Missing or already-Placed
	// ids are skipped.
	PlaceOrders(ctx context.Context, orderIDs []int64) (int64, error)
	// DeleteOrders removes the orders; line items and add-on/charge
	// associations die with them in the same transaction.
	DeleteOrders(ctx context.Context, orderIDs []int64) error
	OrderIDsByCustomer(ctx context.Context, customerID int64) ([]int64, error)
	OrderIDsByAddress(ctx context.Context, addressID int64) ([]int64, error)
	SetOrderCustomer(ctx context.Context, orderID, customerID int64) (bool, error)
	SetOrderAddress(ctx context.Context, orderID, addressID int64) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT order_id, order_type, order_status, customer_id, address_id, created_at, updated_at
		FROM cartorder WHERE order_id=$1
	`, orderID).Scan(&o.ID, &o.Type, &o.Status, &o.CustomerID, &o.AddressID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *PGRepo) OrdersByTypeStatus(ctx context.Context, typ OrderType, status OrderStatus) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT order_id, order_type, order_status, customer_id, address_id, created_at, updated_at
		FROM cartorder
		WHERE order_type=$1 AND order_status=$2
		ORDER BY created_at DESC
	`, typ, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Type, &o.Status, &o.CustomerID, &o.AddressID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpsertLine(ctx context.Context, orderID, productID int64, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// First add creates the owning order as a Processing dine-in order.
	if _, err := tx.Exec(ctx, `
		INSERT INTO cartorder (order_id, order_type, order_status, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (order_id) DO NOTHING
	`, orderID, DineIn, StatusProcessing); err != nil {
		return fmt.Errorf("ensure order: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO cart (order_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
	`, orderID, productID, qty); err != nil {
		return fmt.Errorf("upsert line: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) DeleteLine(ctx context.Context, orderID, productID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		DELETE FROM cart WHERE order_id=$1 AND product_id=$2
	`, orderID, productID)
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}
	return nil
}

func (r *PGRepo) Quantity(ctx context.Context, orderID, productID int64) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var qty int
	err := r.db.QueryRow(ctx, `
		SELECT quantity FROM cart WHERE order_id=$1 AND product_id=$2
	`, orderID, productID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get quantity: %w", err)
	}
	return qty, true, nil
}

func (r *PGRepo) LineItems(ctx context.Context, orderID int64) ([]LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT order_id, product_id, quantity
		FROM cart WHERE order_id=$1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("line items: %w", err)
	}
	defer rows.Close()

	var out []LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.OrderID, &li.ProductID, &li.Quantity); err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func (r *PGRepo) HasAddOn(ctx context.Context, orderID, itemID int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM cart_addon_items WHERE order_id=$1 AND item_id=$2`, orderID, itemID)
}

func (r *PGRepo) AddAddOn(ctx context.Context, orderID, itemID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_addon_items (order_id, item_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (order_id, item_id) DO NOTHING
	`, orderID, itemID)
	if err != nil {
		return fmt.Errorf("add add-on: %w", err)
	}
	return nil
}

func (r *PGRepo) RemoveAddOn(ctx context.Context, orderID, itemID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM cart_addon_items WHERE order_id=$1 AND item_id=$2
	`, orderID, itemID)
	if err != nil {
		return fmt.Errorf("remove add-on: %w", err)
	}
	return nil
}

func (r *PGRepo) AddOnIDs(ctx context.Context, orderID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT item_id FROM cart_addon_items WHERE order_id=$1 ORDER BY created_at`, orderID)
}

func (r *PGRepo) HasCharge(ctx context.Context, orderID, chargesID int64) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM cart_charges WHERE order_id=$1 AND charges_id=$2`, orderID, chargesID)
}

func (r *PGRepo) AddCharge(ctx context.Context, orderID, chargesID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_charges (order_id, charges_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (order_id, charges_id) DO NOTHING
	`, orderID, chargesID)
	if err != nil {
		return fmt.Errorf("add charge: %w", err)
	}
	return nil
}

func (r *PGRepo) RemoveCharge(ctx context.Context, orderID, chargesID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM cart_charges WHERE order_id=$1 AND charges_id=$2
	`, orderID, chargesID)
	if err != nil {
		return fmt.Errorf("remove charge: %w", err)
	}
	return nil
}

func (r *PGRepo) ChargeIDs(ctx context.Context, orderID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT charges_id FROM cart_charges WHERE order_id=$1 ORDER BY created_at`, orderID)
}

func (r *PGRepo) PlaceOrders(ctx context.Context, orderIDs []int64) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The status guard keeps the transition monotonic and makes placement
	// idempotent: already-Placed rows keep their updated_at.
	tag, err := tx.Exec(ctx, `
		UPDATE cartorder
		SET order_status = $2, updated_at = NOW()
		WHERE order_id = ANY($1) AND order_status = $3
	`, orderIDs, StatusPlaced, StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("place orders: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepo) DeleteOrders(ctx context.Context, orderIDs []int64) error {
	if len(orderIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// cart, cart_addon_items and cart_charges rows cascade with the order.
	_, err := r.db.Exec(ctx, `
		DELETE FROM cartorder WHERE order_id = ANY($1)
	`, orderIDs)
	if err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}
	return nil
}

func (r *PGRepo) OrderIDsByCustomer(ctx context.Context, customerID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT order_id FROM cartorder WHERE customer_id=$1 ORDER BY created_at`, customerID)
}

func (r *PGRepo) OrderIDsByAddress(ctx context.Context, addressID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT order_id FROM cartorder WHERE address_id=$1 ORDER BY created_at`, addressID)
}

func (r *PGRepo) SetOrderCustomer(ctx context.Context, orderID, customerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE cartorder SET customer_id=$2, updated_at=NOW()
		WHERE order_id=$1 AND order_status=$3
	`, orderID, customerID, StatusProcessing)
	if err != nil {
		return false, fmt.Errorf("set customer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) SetOrderAddress(ctx context.Context, orderID, addressID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE cartorder SET address_id=$2, updated_at=NOW()
		WHERE order_id=$1 AND order_status=$3
	`, orderID, addressID, StatusProcessing)
	if err != nil {
		return false, fmt.Errorf("set address: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var one int
	err := r.db.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PGRepo) ids(ctx context.Context, query string, arg any) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
