package domain

import "time"

// Employee is a store clerk who authenticates at the register with a PIN.
// Employees use a separate short-lived session model from dashboard users.
type Employee struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	PinHash   string    `db:"pin_hash" json:"-"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TimeEntry is a clock-in/clock-out pair. ClockOut is nil while the shift is
// still open.
type TimeEntry struct {
	ID         int64      `db:"id" json:"id"`
	EmployeeID int64      `db:"employee_id" json:"employee_id"`
	ClockIn    time.Time  `db:"clock_in" json:"clock_in"`
	ClockOut   *time.Time `db:"clock_out" json:"clock_out,omitempty"`
}
