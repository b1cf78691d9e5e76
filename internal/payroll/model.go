package payroll

import "time"

// Employee carries the monthly salary in integer minor currency units.
type Employee struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Position string    `json:"position,omitempty"`
	Salary   int64     `json:"salary"`
	JoinedAt time.Time `json:"joined_date"`
}

type PaymentType string

const (
	PaymentAdvanced PaymentType = "Advanced"
	PaymentSalary   PaymentType = "Salary"
)

type PaymentMode string

const (
	ModeCash   PaymentMode = "Cash"
	ModeOnline PaymentMode = "Online"
	ModeBoth   PaymentMode = "Both"
)

// Payment is an append-only fact: money handed to an employee on a date.
type Payment struct {
	ID         int64       `json:"id"`
	EmployeeID int64       `json:"employee_id"`
	Amount     int64       `json:"amount"`
	Date       time.Time   `json:"date"`
	Type       PaymentType `json:"type"`
	Mode       PaymentMode `json:"mode"`
	Note       string      `json:"note,omitempty"`
}

// Absence is an append-only fact: the employee missed the given date.
type Absence struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Date       time.Time `json:"date"`
	Reason     string    `json:"reason,omitempty"`
}

// DateRange is a half-open pay period [Start, End).
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// CalculatedSalary is the derived aggregate for one employee and range.
// Never persisted.
type CalculatedSalary struct {
	Start        time.Time `json:"start_date"`
	End          time.Time `json:"end_date"`
	Remaining    int64     `json:"remaining_amount"`
	PaymentCount int       `json:"payment_count"`
	AbsentCount  int       `json:"absent_count"`
	Message      string    `json:"message,omitempty"`
}

type SalaryStatus string

const (
	StatusNotPaid SalaryStatus = "NotPaid"
	StatusPartial SalaryStatus = "Partial"
	StatusPaid    SalaryStatus = "Paid"
)

// SalaryCalculation is the payment-level breakdown for one range.
type SalaryCalculation struct {
	Start    time.Time    `json:"start_date"`
	End      time.Time    `json:"end_date"`
	Status   SalaryStatus `json:"status"`
	Payments []Payment    `json:"payments"`
	Message  string       `json:"message,omitempty"`
}
