package models

import "time"

// Employee represents a staff member registered at one institution.
type Employee struct {
	ID            string    `db:"id" json:"id"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	EmployeeID    string    `db:"employee_id" json:"employee_id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Department    string    `db:"department" json:"department"`
	Designation   string    `db:"designation" json:"designation"`
	Mobile        string    `db:"mobile" json:"mobile"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Photo         []byte    `db:"photo" json:"photo,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures caller-supplied filters for employee listings.
type EmployeeFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
}
