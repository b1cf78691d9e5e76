// Package payroll aggregates employee payments and absences over pay periods
// to compute owed salary.
package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidAmount    = errors.New("payment amount must be positive")
)

type Repository interface {
	EmployeeByID(ctx context.Context, id int64) (*Employee, error)
	// PaymentsBetween returns the employee's payments with date in
	// [start, end), oldest first.
	PaymentsBetween(ctx context.Context, employeeID int64, start, end time.Time) ([]Payment, error)
	AbsencesBetween(ctx context.Context, employeeID int64, start, end time.Time) ([]Absence, error)
	RecordPayment(ctx context.Context, p *Payment) error
	RecordAbsence(ctx context.Context, a *Absence) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) EmployeeByID(ctx context.Context, id int64) (*Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var e Employee
	err := r.db.QueryRow(ctx, `
		SELECT employee_id, employee_name, COALESCE(employee_phone,''),
		       COALESCE(employee_position,''), employee_salary, joined_date
		FROM employee WHERE employee_id=$1
	`, id).Scan(&e.ID, &e.Name, &e.Phone, &e.Position, &e.Salary, &e.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

func (r *PGRepo) PaymentsBetween(ctx context.Context, employeeID int64, start, end time.Time) ([]Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT payment_id, employee_id, payment_amount, payment_date,
		       payment_type, payment_mode, COALESCE(payment_note,'')
		FROM payment
		WHERE employee_id=$1 AND payment_date >= $2 AND payment_date < $3
		ORDER BY payment_date
	`, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Amount, &p.Date, &p.Type, &p.Mode, &p.Note); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) AbsencesBetween(ctx context.Context, employeeID int64, start, end time.Time) ([]Absence, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT absent_id, employee_id, absent_date, COALESCE(absent_reason,'')
		FROM absent
		WHERE employee_id=$1 AND absent_date >= $2 AND absent_date < $3
		ORDER BY absent_date
	`, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("absences: %w", err)
	}
	defer rows.Close()

	var out []Absence
	for rows.Next() {
		var a Absence
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Reason); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) RecordPayment(ctx context.Context, p *Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO payment (employee_id, payment_amount, payment_date,
		                     payment_type, payment_mode, payment_note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING payment_id
	`, p.EmployeeID, p.Amount, p.Date, p.Type, p.Mode, p.Note).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}

func (r *PGRepo) RecordAbsence(ctx context.Context, a *Absence) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO absent (employee_id, absent_date, absent_reason, created_at)
		VALUES ($1,$2,$3,NOW())
		RETURNING absent_id
	`, a.EmployeeID, a.Date, a.Reason).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("record absence: %w", err)
	}
	return nil
}
