package models

import "time"

// PaymentStatus tracks whether a student's card fee has been settled.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// Student represents a learner registered at one institution. The tuple
// (institution_id, roll_no, section, class) is unique per institution and
// acts as the natural key for change-request submissions.
type Student struct {
	ID            string        `db:"id" json:"id"`
	InstitutionID string        `db:"institution_id" json:"institution_id"`
	RollNo        string        `db:"roll_no" json:"roll_no"`
	Section       string        `db:"section" json:"section"`
	Class         string        `db:"class" json:"class"`
	Branch        *string       `db:"branch" json:"branch,omitempty"`
	BatchStart    int           `db:"batch_start" json:"batch_start"`
	BatchEnd      int           `db:"batch_end" json:"batch_end"`
	FullName      string        `db:"full_name" json:"full_name"`
	Mobile        string        `db:"mobile" json:"mobile"`
	Email         string        `db:"email" json:"email"`
	Address       string        `db:"address" json:"address"`
	BloodGroup    string        `db:"blood_group" json:"blood_group"`
	GuardianName  string        `db:"guardian_name" json:"guardian_name"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	PasswordHash  string        `db:"password_hash" json:"-"`
	Photo         []byte        `db:"photo" json:"photo,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates caller-supplied search parameters. Tenancy and
// branch scope are applied by the service before these filters.
type StudentFilter struct {
	Search        string
	RollNo        string
	Branch        string
	BatchStart    int
	PaymentStatus PaymentStatus
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
