package models

import "time"

// CardDesign is a super-admin-curated card template available to every
// institution.
type CardDesign struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	FrontImage []byte    `db:"front_image" json:"front_image,omitempty"`
	BackImage  []byte    `db:"back_image" json:"back_image,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// InstituteCardDesign is a custom design submitted by one institution.
// Structurally identical to CardDesign apart from its tenant binding.
type InstituteCardDesign struct {
	ID            string    `db:"id" json:"id"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	Name          string    `db:"name" json:"name"`
	FrontImage    []byte    `db:"front_image" json:"front_image,omitempty"`
	BackImage     []byte    `db:"back_image" json:"back_image,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
