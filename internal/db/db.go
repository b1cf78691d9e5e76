// Package db owns the PostgreSQL connection pool and the relational schema
// for the point-of-sale core.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the schema. Statements are idempotent so it is safe to run
// on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// All prices and salary amounts are integer minor currency units (BIGINT).
// Child rows die with their owner via ON DELETE CASCADE: cart, cart_addon_items
// and cart_charges rows with their cartorder; payment and absent rows with
// their employee.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS product (
		product_id   BIGINT PRIMARY KEY,
		category_id  BIGINT NOT NULL,
		product_name TEXT NOT NULL,
		product_price BIGINT NOT NULL CHECK (product_price >= 0),
		available    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS addonitem (
		item_id       BIGINT PRIMARY KEY,
		item_name     TEXT NOT NULL,
		item_price    BIGINT NOT NULL CHECK (item_price >= 0),
		is_applicable BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS charges (
		charges_id    BIGINT PRIMARY KEY,
		charges_name  TEXT NOT NULL,
		charges_price BIGINT NOT NULL CHECK (charges_price >= 0),
		is_applicable BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS customer (
		customer_id    BIGINT PRIMARY KEY,
		customer_name  TEXT,
		customer_phone TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS address (
		address_id   BIGINT PRIMARY KEY,
		address_name TEXT NOT NULL,
		short_name   TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cartorder (
		order_id     BIGINT PRIMARY KEY,
		order_type   TEXT NOT NULL,
		order_status TEXT NOT NULL DEFAULT 'Processing',
		customer_id  BIGINT REFERENCES customer(customer_id) ON DELETE CASCADE,
		address_id   BIGINT REFERENCES address(address_id) ON DELETE CASCADE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS cart (
		order_id   BIGINT NOT NULL REFERENCES cartorder(order_id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES product(product_id) ON DELETE CASCADE,
		quantity   INT NOT NULL CHECK (quantity > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ,
		UNIQUE (order_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_addon_items (
		order_id   BIGINT NOT NULL REFERENCES cartorder(order_id) ON DELETE CASCADE,
		item_id    BIGINT NOT NULL REFERENCES addonitem(item_id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (order_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_charges (
		order_id   BIGINT NOT NULL REFERENCES cartorder(order_id) ON DELETE CASCADE,
		charges_id BIGINT NOT NULL REFERENCES charges(charges_id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (order_id, charges_id)
	)`,
	`CREATE TABLE IF NOT EXISTS employee (
		employee_id       BIGINT PRIMARY KEY,
		employee_name     TEXT NOT NULL,
		employee_phone    TEXT,
		employee_position TEXT,
		employee_salary   BIGINT NOT NULL CHECK (employee_salary >= 0),
		joined_date       TIMESTAMPTZ NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS absent (
		absent_id     BIGSERIAL PRIMARY KEY,
		employee_id   BIGINT NOT NULL REFERENCES employee(employee_id) ON DELETE CASCADE,
		absent_date   TIMESTAMPTZ NOT NULL,
		absent_reason TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS payment (
		payment_id     BIGSERIAL PRIMARY KEY,
		employee_id    BIGINT NOT NULL REFERENCES employee(employee_id) ON DELETE CASCADE,
		payment_amount BIGINT NOT NULL CHECK (payment_amount > 0),
		payment_date   TIMESTAMPTZ NOT NULL,
		payment_type   TEXT NOT NULL,
		payment_mode   TEXT NOT NULL,
		payment_note   TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cartorder_type_status ON cartorder (order_type, order_status)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_employee_date ON payment (employee_id, payment_date)`,
	`CREATE INDEX IF NOT EXISTS idx_absent_employee_date ON absent (employee_id, absent_date)`,
}
