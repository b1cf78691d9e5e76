package payroll

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pay periods are one calendar month anchored at the employee's join day.
// A period allocates the full monthly salary; every absence deducts one
// thirtieth of it. Integer division on minor units keeps the math exact
// enough for settlement (the final remainder stays in the last deduction).
const workingDaysPerPeriod = 30

// Engine aggregates payment and absence facts into derived salary views.
type Engine struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewEngine(repo Repository, log *zap.Logger) *Engine {
	return &Engine{repo: repo, log: log, now: time.Now}
}

// Estimate computes what the employee is still owed for the range:
// allocated salary minus payments minus the absence deduction, clamped at
// zero.
func (e *Engine) Estimate(ctx context.Context, employeeID int64, r DateRange) (*CalculatedSalary, error) {
	emp, err := e.repo.EmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	payments, err := e.repo.PaymentsBetween(ctx, employeeID, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	absences, err := e.repo.AbsencesBetween(ctx, employeeID, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	var paid int64
	for _, p := range payments {
		paid += p.Amount
	}

	out := &CalculatedSalary{
		Start:        r.Start,
		End:          r.End,
		PaymentCount: len(payments),
		AbsentCount:  len(absences),
	}
	remaining := allocatedSalary(emp, r) - paid - absentDeduction(emp, len(absences))
	if remaining < 0 {
		out.Message = "payments exceed the allocated salary for this period"
		remaining = 0
	}
	out.Remaining = remaining
	return out, nil
}

// CalculateSalary returns the payment-level breakdown for the range together
// with its settlement status.
func (e *Engine) CalculateSalary(ctx context.Context, employeeID int64, r DateRange) (*SalaryCalculation, error) {
	est, err := e.Estimate(ctx, employeeID, r)
	if err != nil {
		return nil, err
	}
	payments, err := e.repo.PaymentsBetween(ctx, employeeID, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	out := &SalaryCalculation{
		Start:    r.Start,
		End:      r.End,
		Payments: payments,
		Message:  est.Message,
	}
	switch {
	case est.PaymentCount == 0:
		out.Status = StatusNotPaid
	case est.Remaining == 0:
		out.Status = StatusPaid
	default:
		out.Status = StatusPartial
	}
	return out, nil
}

// CalculableDateRanges returns the employee's pay periods from the join date
// up to now that are not yet settled. A period is settled once at least one
// payment exists and nothing remains owed.
func (e *Engine) CalculableDateRanges(ctx context.Context, employeeID int64) ([]DateRange, error) {
	emp, err := e.repo.EmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	var out []DateRange
	for _, r := range periodsSince(emp.JoinedAt, e.now()) {
		est, err := e.Estimate(ctx, employeeID, r)
		if err != nil {
			return nil, err
		}
		if est.PaymentCount > 0 && est.Remaining == 0 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// RecordPayment validates and appends a payment fact.
func (e *Engine) RecordPayment(ctx context.Context, p *Payment) error {
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := e.repo.EmployeeByID(ctx, p.EmployeeID); err != nil {
		return err
	}
	if err := e.repo.RecordPayment(ctx, p); err != nil {
		return err
	}
	e.log.Info("payment recorded",
		zap.Int64("employee_id", p.EmployeeID),
		zap.Int64("amount", p.Amount),
		zap.String("type", string(p.Type)))
	return nil
}

// RecordAbsence validates and appends an absence fact.
func (e *Engine) RecordAbsence(ctx context.Context, a *Absence) error {
	if _, err := e.repo.EmployeeByID(ctx, a.EmployeeID); err != nil {
		return err
	}
	return e.repo.RecordAbsence(ctx, a)
}

func allocatedSalary(emp *Employee, _ DateRange) int64 {
	return emp.Salary
}

func absentDeduction(emp *Employee, absences int) int64 {
	return int64(absences) * (emp.Salary / workingDaysPerPeriod)
}

// periodsSince partitions [joined, now) into month-long ranges anchored at
// the join day. The trailing, still-running period is included.
func periodsSince(joined, now time.Time) []DateRange {
	if !joined.Before(now) {
		return nil
	}
	var out []DateRange
	start := joined
	for start.Before(now) {
		end := start.AddDate(0, 1, 0)
		out = append(out, DateRange{Start: start, End: end})
		start = end
	}
	return out
}
