package models

import "time"

// InstituteAdmin administers exactly one institution. A non-empty Department
// narrows the admin's student visibility to students sharing that branch.
type InstituteAdmin struct {
	ID            string    `db:"id" json:"id"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	Email         string    `db:"email" json:"email"`
	FullName      string    `db:"full_name" json:"full_name"`
	Department    *string   `db:"department" json:"department,omitempty"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	ApprovedBy    *string   `db:"approved_by" json:"approved_by,omitempty"`
	CardDesignID  *string   `db:"card_design_id" json:"card_design_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SuperAdmin manages institutions and institute admins globally. It is the
// only principal kind without an institution binding.
type SuperAdmin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
