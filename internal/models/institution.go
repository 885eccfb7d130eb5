package models

import "time"

// InstitutionType distinguishes the three supported tenant kinds.
type InstitutionType string

const (
	InstitutionTypeSchool  InstitutionType = "school"
	InstitutionTypeCollege InstitutionType = "college"
	InstitutionTypeCompany InstitutionType = "company"
)

// Institution is the tenancy boundary: every student, employee and institute
// admin row references exactly one institution. Code is globally unique.
type Institution struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Code      string          `db:"code" json:"code"`
	Type      InstitutionType `db:"type" json:"type"`
	Address   string          `db:"address" json:"address"`
	Phone     string          `db:"phone" json:"phone"`
	Email     string          `db:"email" json:"email"`
	Logo      []byte          `db:"logo" json:"logo,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
